// Package duration parses durations with day and week units.
// It accepts everything time.ParseDuration accepts, plus "d" (days)
// and "w" (weeks), which may be combined with the standard units:
// "7d", "2w", "1w2d12h".
package duration

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Day is 24 hours.
	Day = 24 * time.Hour
	// Week is 7 days.
	Week = 7 * Day
)

// Parse converts a duration string into a time.Duration.
// Day and week segments must precede any standard Go duration segments.
func Parse(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("duration: empty string")
	}

	rest := trimmed
	negative := false
	if strings.HasPrefix(rest, "-") {
		negative = true
		rest = rest[1:]
	}

	var total time.Duration
	for {
		value, unit, remainder, ok := nextSegment(rest)
		if !ok {
			break
		}
		switch unit {
		case "w":
			total += time.Duration(value * float64(Week))
		case "d":
			total += time.Duration(value * float64(Day))
		default:
			// Hand the remaining standard-unit segments to the stdlib.
			unit = ""
		}
		if unit == "" {
			break
		}
		rest = remainder
		if rest == "" {
			if negative {
				return -total, nil
			}
			return total, nil
		}
	}

	tail, err := time.ParseDuration(rest)
	if err != nil {
		return 0, fmt.Errorf("duration: invalid duration %q", s)
	}
	total += tail

	if negative {
		return -total, nil
	}
	return total, nil
}

// nextSegment splits the leading number+unit pair off a duration string.
// Reports ok=false when the string does not start with a number.
func nextSegment(s string) (value float64, unit string, rest string, ok bool) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return 0, "", s, false
	}
	var num float64
	if _, err := fmt.Sscanf(s[:i], "%g", &num); err != nil {
		return 0, "", s, false
	}
	j := i
	for j < len(s) && (s[j] < '0' || s[j] > '9') && s[j] != '.' {
		j++
	}
	return num, s[i:j], s[j:], true
}

// Format renders a duration using week and day units where they divide
// evenly, falling back to the standard Go representation.
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	prefix := ""
	if d < 0 {
		prefix = "-"
		d = -d
	}

	var out strings.Builder
	if weeks := d / Week; weeks > 0 {
		fmt.Fprintf(&out, "%dw", weeks)
		d -= weeks * Week
	}
	if days := d / Day; days > 0 {
		fmt.Fprintf(&out, "%dd", days)
		d -= days * Day
	}
	if d > 0 {
		out.WriteString(d.String())
	}
	return prefix + out.String()
}
