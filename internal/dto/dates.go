package dto

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used in requests and responses.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseOptionalDate parses value when present and returns nil for an empty string.
func ParseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
