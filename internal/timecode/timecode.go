package timecode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid reports input that does not parse as a time code.
var ErrInvalid = errors.New("invalid time code")

// TimeCode is a non-negative duration expressed as hours, minutes, and
// seconds. Minutes and seconds are always below 60.
type TimeCode struct {
	Hours   int
	Minutes int
	Seconds int
}

// Parse normalizes a time string into a TimeCode. Accepted shapes are
// H:MM:SS, HH:MM:SS, M:SS, and MM:SS; the two-field form is treated as
// minutes and seconds with a zero hour. Anything else is rejected.
func Parse(text string) (TimeCode, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")

	var hourField, minuteField, secondField string
	switch len(parts) {
	case 2:
		hourField, minuteField, secondField = "0", parts[0], parts[1]
	case 3:
		hourField, minuteField, secondField = parts[0], parts[1], parts[2]
	default:
		return TimeCode{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}

	// The leading field may be one or two digits; the rest are exactly two.
	hours, err := parseField(hourField, 1, 2)
	if err != nil {
		return TimeCode{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	minuteDigits := 2
	if len(parts) == 2 {
		minuteDigits = 1
	}
	minutes, err := parseField(minuteField, minuteDigits, 2)
	if err != nil || minutes >= 60 {
		return TimeCode{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	seconds, err := parseField(secondField, 2, 2)
	if err != nil || seconds >= 60 {
		return TimeCode{}, fmt.Errorf("%w: %q", ErrInvalid, text)
	}

	return TimeCode{Hours: hours, Minutes: minutes, Seconds: seconds}, nil
}

func parseField(field string, minDigits, maxDigits int) (int, error) {
	if len(field) < minDigits || len(field) > maxDigits {
		return 0, ErrInvalid
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, ErrInvalid
		}
	}
	return strconv.Atoi(field)
}

// String returns the canonical zero-padded HH:MM:SS form.
func (t TimeCode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the duration in whole seconds.
func (t TimeCode) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// Slug returns the canonical form with colons replaced by dashes so the
// value can appear in a file name.
func (t TimeCode) Slug() string {
	return strings.ReplaceAll(t.String(), ":", "-")
}

// After reports whether t is strictly later than other.
func (t TimeCode) After(other TimeCode) bool {
	return t.TotalSeconds() > other.TotalSeconds()
}
