package engine

import (
	"math"
	"strings"
)

// EvalStatus describes how an expression evaluation concluded.
type EvalStatus int

const (
	// EvalOK means the expression produced a usable value.
	EvalOK EvalStatus = iota

	// EvalUnevaluated means the expression could not be evaluated at
	// all (unknown reference, non-numeric operand, or characters
	// outside the formula alphabet); the original expression string is
	// returned unchanged so the caller can surface it to the operator.
	EvalUnevaluated

	// EvalNumericError means the formula's references all resolved but
	// the arithmetic itself failed (malformed like "50*", NaN, or
	// division by zero); the value degrades to 0.
	EvalNumericError
)

// String returns a short name for the status.
func (s EvalStatus) String() string {
	switch s {
	case EvalOK:
		return "ok"
	case EvalUnevaluated:
		return "unevaluated"
	case EvalNumericError:
		return "numeric_error"
	default:
		return "unknown"
	}
}

// EvaluateExpression evaluates a rule's source expression against one
// row. It never panics and never returns an error: invalid input
// degrades to the original expression string (so the caller can flag
// it) or to 0 for arithmetic failures.
//
// A bare column reference returns the cell directly: numeric-parseable
// cells become numbers, date cells and non-numeric text stay strings,
// byte for byte. Anything else is treated as an arithmetic formula
// over column and derived-field references; numeric results are
// rounded to 2 decimal places.
func EvaluateExpression(expr string, row Row, catalog *Catalog, derived map[string]Value) Value {
	value, _ := evaluate(expr, catalog.rowLookup(row), derived)
	return value
}

// EvaluateExpressionStatus is EvaluateExpression with the evaluation
// status exposed; the derivation pipeline uses the status to flag
// cells to the operator.
func EvaluateExpressionStatus(expr string, row Row, catalog *Catalog, derived map[string]Value) (Value, EvalStatus) {
	return evaluate(expr, catalog.rowLookup(row), derived)
}

// evaluate runs the full evaluation against a prebuilt row lookup.
func evaluate(expr string, lookup map[string]cellRef, derived map[string]Value) (Value, EvalStatus) {
	key := strings.ToLower(strings.TrimSpace(expr))
	if key == "" {
		return StringValue(expr), EvalUnevaluated
	}

	// Direct reference: the expression is exactly a column name.
	if cell, ok := lookup[key]; ok {
		return coerce(cell), EvalOK
	}

	// Direct reference to an already-derived booking field.
	if value, ok := derivedValue(derived, key); ok {
		return value, EvalOK
	}

	// Arithmetic formula.
	tokens, lexOK := newLexer(expr).tokenize()
	if !lexOK {
		return StringValue(expr), EvalUnevaluated
	}

	vars, resolved := resolveIdents(tokens, lookup, derived)
	if !resolved {
		return StringValue(expr), EvalUnevaluated
	}

	node, err := newParser(tokens).parse()
	if err != nil {
		// References were fine but the arithmetic is malformed
		// ("Rate*"): degrade to 0, flagged.
		return NumberValue(0), EvalNumericError
	}

	result := node.eval(vars)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return NumberValue(0), EvalNumericError
	}
	return NumberValue(round2(result)), EvalOK
}

// round2 rounds to 2 decimal places.
func round2(n float64) float64 {
	return math.Round(n*100) / 100
}

// derivedValue looks up a derived booking-field value by lower-cased
// name.
func derivedValue(derived map[string]Value, key string) (Value, bool) {
	for name, value := range derived {
		if strings.ToLower(strings.TrimSpace(name)) == key {
			return value, true
		}
	}
	return Value{}, false
}

// resolveIdents binds every identifier in the token stream to a
// numeric value. Derived fields win over columns with the same name
// (they are written later in the row's lifecycle). Date cells are
// never coerced into arithmetic. Returns false when any reference is
// unknown or non-numeric, which makes the whole formula unevaluated.
func resolveIdents(tokens []token, lookup map[string]cellRef, derived map[string]Value) (map[string]float64, bool) {
	vars := make(map[string]float64)

	for i := 0; i < len(tokens); i++ {
		if tokens[i].typ != tokenIdent {
			continue
		}
		// Join consecutive ident words exactly like the parser does.
		words := []string{strings.ToLower(tokens[i].value)}
		for i+1 < len(tokens) && tokens[i+1].typ == tokenIdent {
			i++
			words = append(words, strings.ToLower(tokens[i].value))
		}
		name := strings.Join(words, " ")
		if _, done := vars[name]; done {
			continue
		}

		n, ok := resolveNumeric(name, lookup, derived)
		if !ok {
			return nil, false
		}
		vars[name] = n
	}
	return vars, true
}

// resolveNumeric resolves one reference name to a number.
func resolveNumeric(name string, lookup map[string]cellRef, derived map[string]Value) (float64, bool) {
	if value, ok := derivedValue(derived, name); ok {
		if value.IsNumber() {
			return value.Number(), true
		}
		return parseNumeric(value.Text())
	}
	if cell, ok := lookup[name]; ok {
		if cell.isDate {
			return 0, false
		}
		return parseNumeric(cell.raw)
	}
	return 0, false
}
