package services

import (
	"strings"
	"time"

	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

// DateStrategy extracts a document date from one source. Strategies are tried
// in order and the first valid result wins.
type DateStrategy struct {
	Name    string
	Extract func(doc docstore.Document, loc *time.Location) (time.Time, bool)
}

// FieldDate reads and parses a single document field.
func FieldDate(field string) DateStrategy {
	return DateStrategy{
		Name: field,
		Extract: func(doc docstore.Document, loc *time.Location) (time.Time, bool) {
			v, ok := doc.Get(field)
			if !ok {
				return time.Time{}, false
			}
			return ParseTimestamp(v, loc)
		},
	}
}

// DefaultDateStrategies is the best-effort order for legacy appointments.
var DefaultDateStrategies = []DateStrategy{
	FieldDate("createdAt"),
	FieldDate("date"),
	FieldDate("paidAt"),
	FieldDate("updatedAt"),
}

// DocumentDate returns the first date any strategy can extract and the name of
// the strategy that produced it.
func DocumentDate(doc docstore.Document, strategies []DateStrategy, loc *time.Location) (time.Time, string, bool) {
	for _, s := range strategies {
		if t, ok := s.Extract(doc, loc); ok {
			return t, s.Name, true
		}
	}
	return time.Time{}, "", false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	docstore.DateLayout,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp accepts the timestamp shapes found in appointment documents:
// native instants, date strings, epoch milliseconds and {seconds, nanoseconds}
// maps exported from other document stores. Strings without a zone are read in loc.
func ParseTimestamp(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		return parseString(x, loc)
	case map[string]any:
		return parseSecondsMap(x)
	}
	if ms, ok := toInt64(v); ok {
		return time.UnixMilli(ms), true
	}
	return time.Time{}, false
}

func parseString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseSecondsMap(m map[string]any) (time.Time, bool) {
	sec, ok := toInt64(first(m, "seconds", "_seconds"))
	if !ok {
		return time.Time{}, false
	}
	nsec, _ := toInt64(first(m, "nanoseconds", "_nanoseconds"))
	return time.Unix(sec, nsec), true
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
