package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValueKind discriminates the two shapes a derived value can take.
type ValueKind int

const (
	// ValueString is a raw string value: dates, names, codes, or text
	// that could not be evaluated numerically.
	ValueString ValueKind = iota

	// ValueNumber is a numeric value rounded to 2 decimal places.
	ValueNumber
)

// Value is a derived booking-field value: either a number or a string.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// NumberValue creates a numeric value.
func NumberValue(n float64) Value {
	return Value{kind: ValueNumber, num: n}
}

// StringValue creates a string value.
func StringValue(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool {
	return v.kind == ValueNumber
}

// Number returns the numeric value, or 0 for string values.
func (v Value) Number() float64 {
	if v.kind != ValueNumber {
		return 0
	}
	return v.num
}

// Text returns the string form of the value. Numbers format with the
// minimal decimal representation (97 not 97.00).
func (v Value) Text() string {
	if v.kind == ValueNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == ValueNumber {
		return v.num == other.num
	}
	return v.str == other.str
}

// MarshalJSON renders numbers as JSON numbers and strings as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == ValueNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts either a JSON number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = NumberValue(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*v = StringValue(str)
	return nil
}

// currencyMarks are symbols stripped before numeric coercion. Platform
// exports routinely prefix payouts with a currency symbol.
const currencyMarks = "$€£"

// parseNumeric coerces a raw cell string to a number. It tolerates
// surrounding whitespace, a leading currency symbol, and thousands
// separators ("$1,234.50"). Returns false for anything else.
func parseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	for _, mark := range currencyMarks {
		s = strings.TrimPrefix(s, string(mark))
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// coerce converts a raw cell to a Value, honoring the date-column rule:
// date cells are never numeric-coerced.
func coerce(cell cellRef) Value {
	if cell.isDate {
		return StringValue(cell.raw)
	}
	if n, ok := parseNumeric(cell.raw); ok {
		return NumberValue(n)
	}
	return StringValue(cell.raw)
}
