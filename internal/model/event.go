package model

import (
	"errors"
	"time"
)

// Event scheduling errors returned by CombineDateTime.
var (
	// ErrDateTimePair is returned when only one of the date/time parts is supplied.
	ErrDateTimePair = errors.New("Both eventDate and time are required to schedule an event")
	// ErrDateTimeFormat is returned when the combined value does not parse.
	ErrDateTimeFormat = errors.New("Invalid date or time format")
)

// dateTimeLayouts are the accepted layouts for the combined date+time value,
// tried in order. Seconds are optional.
var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// CombineDateTime combines a date string ("2006-01-02") and a time string
// ("15:04" or "15:04:05") into a single local instant. Supplying exactly one
// of the two is rejected with ErrDateTimePair; an unparseable combination is
// rejected with ErrDateTimeFormat. There is no partially scheduled event.
func CombineDateTime(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, ErrDateTimePair
	}
	combined := date + "T" + clock
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, combined, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrDateTimeFormat
}
