package config

import (
	"encoding/json"
	"time"

	"github.com/hostfolio/bookpipe/pkg/duration"
)

// Duration is a time.Duration that supports day and week units on top
// of the standard Go format, for retention-style settings.
//
// Examples:
//   - "24h" = 24 hours (standard Go format)
//   - "7d" = 7 days
//   - "2w" = 2 weeks
//   - "1w2d12h" = 1 week, 2 days, 12 hours
//
// It implements encoding.TextUnmarshaler and json.Unmarshaler so both
// YAML and JSON configuration files can use either form.
type Duration time.Duration

// ParseDuration parses a duration string with optional day and week units.
func ParseDuration(s string) (Duration, error) {
	d, err := duration.Parse(s)
	if err != nil {
		return 0, err
	}
	return Duration(d), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts either a duration
// string or a raw nanosecond count.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var ns int64
		if err := json.Unmarshal(data, &ns); err != nil {
			return err
		}
		*d = Duration(ns)
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String renders the duration using week and day units where possible.
func (d Duration) String() string {
	return duration.Format(time.Duration(d))
}
