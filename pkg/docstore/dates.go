package docstore

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format accepted at the dashboard boundary.
const DateLayout = "2006-01-02"

// StartOfDay returns local midnight of the day t falls on.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last millisecond (23:59:59.999) of the day t falls on.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// ParseDay parses a YYYY-MM-DD string as local midnight.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Bounds converts optional calendar-date strings into inclusive instants. An
// empty string yields a nil bound.
func Bounds(start, end string, loc *time.Location) (from, to *time.Time, err error) {
	if start != "" {
		t, err := ParseDay(start, loc)
		if err != nil {
			return nil, nil, err
		}
		t = StartOfDay(t, loc)
		from = &t
	}
	if end != "" {
		t, err := ParseDay(end, loc)
		if err != nil {
			return nil, nil, err
		}
		t = EndOfDay(t, loc)
		to = &t
	}
	return from, to, nil
}

// RangeFilters builds the server-side filters for the bounds that are present.
func RangeFilters(field string, from, to *time.Time) []Filter {
	var fs []Filter
	if from != nil {
		fs = append(fs, Filter{Field: field, Op: OpGTE, Value: *from})
	}
	if to != nil {
		fs = append(fs, Filter{Field: field, Op: OpLTE, Value: *to})
	}
	return fs
}
