package domain

import "fmt"

// HourFormat is the persisted display preference token.
type HourFormat string

const (
	HourFormat24 HourFormat = "24"
	HourFormat12 HourFormat = "12"
)

// DefaultHourFormat is used when no preference has been stored yet.
const DefaultHourFormat = HourFormat24

func ParseHourFormat(s string) (HourFormat, error) {
	switch HourFormat(s) {
	case HourFormat24, HourFormat12:
		return HourFormat(s), nil
	default:
		return "", fmt.Errorf("hour format must be %q or %q, got %q", HourFormat24, HourFormat12, s)
	}
}

func (f HourFormat) Use24Hour() bool { return f != HourFormat12 }

// Toggled returns the other format.
func (f HourFormat) Toggled() HourFormat {
	if f.Use24Hour() {
		return HourFormat12
	}
	return HourFormat24
}
