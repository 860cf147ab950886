package utils

import (
	"fmt"
	"strings"
	"time"
)

// bookingTimeLayouts are accepted in order. The minute-precision layout is what
// datetime-local inputs submit.
var bookingTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseBookingTime parses a booking start/end value. Values without an offset are read in loc.
func ParseBookingTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date and time are required")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range bookingTimeLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-ddThh:mm")
}
