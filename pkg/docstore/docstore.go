// Package docstore is the generic query interface the dashboard uses to reach a
// remote document collection. Backends live under pkg/storage.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnsupportedFilter = errors.New("docstore: unsupported filter")
	ErrClosed            = errors.New("docstore: store closed")
)

// Document is an opaque key/value record plus its stable identifier.
type Document struct {
	ID     string
	Fields map[string]any
}

// Get returns the raw value of a field and whether it is present.
func (d Document) Get(field string) (any, bool) {
	if d.Fields == nil {
		return nil, false
	}
	v, ok := d.Fields[field]
	return v, ok
}

// String returns the field as a string when it holds one.
func (d Document) String(field string) (string, bool) {
	v, ok := d.Get(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Op is a comparison operator supported by server-side filters.
type Op string

const (
	OpGTE Op = ">="
	OpLTE Op = "<="
)

// Filter compares a document field with an instant.
type Filter struct {
	Field string
	Op    Op
	Value time.Time
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Field, f.Op, f.Value.Format(time.RFC3339Nano))
}

// Match reports whether v satisfies the filter. Only native instants can match;
// strings and missing values never do.
func (f Filter) Match(v any) bool {
	t, ok := v.(time.Time)
	if !ok {
		return false
	}
	switch f.Op {
	case OpGTE:
		return !t.Before(f.Value)
	case OpLTE:
		return !t.After(f.Value)
	}
	return false
}

// Range is the [Min, Max] interval a set of filters on one field describes.
// A nil bound is unbounded.
type Range struct {
	Field string
	Min   *time.Time
	Max   *time.Time
}

// RangeOf folds filters into a single field range. Backends that can only index
// one field use it to reject anything else.
func RangeOf(filters []Filter) (Range, error) {
	var r Range
	for _, f := range filters {
		if r.Field == "" {
			r.Field = f.Field
		} else if r.Field != f.Field {
			return Range{}, fmt.Errorf("%w: filters on %q and %q", ErrUnsupportedFilter, r.Field, f.Field)
		}
		v := f.Value
		switch f.Op {
		case OpGTE:
			if r.Min == nil || v.After(*r.Min) {
				r.Min = &v
			}
		case OpLTE:
			if r.Max == nil || v.Before(*r.Max) {
				r.Max = &v
			}
		default:
			return Range{}, fmt.Errorf("%w: operator %q", ErrUnsupportedFilter, f.Op)
		}
	}
	return r, nil
}

// Finder runs read-only queries. Calling Find without filters fetches the
// entire collection.
type Finder interface {
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
}

// Inserter stores a document and returns its identifier. An empty Document.ID
// lets the backend assign one.
type Inserter interface {
	Insert(ctx context.Context, collection string, doc Document) (string, error)
}

type ReadWriter interface {
	Finder
	Inserter
}

type Store interface {
	ReadWriter
	Close(ctx context.Context) error
}
