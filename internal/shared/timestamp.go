package shared

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatDuration renders whole seconds as "m:ss", or "h:mm:ss" past an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatSeconds renders fractional seconds with [FormatDuration], rounding down.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "-:--"
	}
	return FormatDuration(int(math.Floor(seconds)))
}

// ParseTimestamp parses "SS", "MM:SS" or "HH:MM:SS" (seconds may be fractional) into seconds.
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1

		var v float64
		if last {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
			}
			v = f
		} else {
			n, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
			}
			v = float64(n)
		}

		if v < 0 || (i > 0 && v >= 60) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		total = total*60 + v
	}

	return total, nil
}

// ValidateRange checks that a clip's start does not come after its end.
//
// Equal start and end describe an instant and are allowed.
func ValidateRange(start, end float64) error {
	if start < 0 || end < 0 {
		return fmt.Errorf("%w: negative timestamp", ErrInvalidTimestamp)
	}
	if start > end {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, FormatSeconds(start), FormatSeconds(end))
	}
	return nil
}
