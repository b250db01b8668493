package docstore

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Filters apply the same native-instant
// semantics as the remote backends.
type MemoryStore struct {
	mu     sync.RWMutex
	colls  map[string][]Document
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{colls: make(map[string][]Document)}
}

func (m *MemoryStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", ErrClosed
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Fields = maps.Clone(doc.Fields)
	m.colls[collection] = append(m.colls[collection], doc)
	return doc.ID, nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	var out []Document
	for _, d := range m.colls[collection] {
		if MatchAll(d, filters) {
			out = append(out, Document{ID: d.ID, Fields: maps.Clone(d.Fields)})
		}
	}
	return out, nil
}

func (m *MemoryStore) Close(context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// MatchAll reports whether d satisfies every filter.
func MatchAll(d Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := d.Get(f.Field)
		if !ok || !f.Match(v) {
			return false
		}
	}
	return true
}
