package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/services"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

func TestToDocument(t *testing.T) {
	raw := map[string]any{
		"_id":       "apt-1",
		"createdAt": "2024-01-05T10:00:00Z",
		"paidAt":    "kemarin",
		"type":      "Blood Test",
	}

	d := toDocument(raw, false)
	assert.Equal(t, "apt-1", d.ID)
	assert.NotContains(t, d.Fields, "_id")
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), d.Fields["createdAt"])
	assert.Equal(t, "kemarin", d.Fields["paidAt"])
	assert.Equal(t, "Blood Test", d.Fields["type"])

	kept := toDocument(raw, true)
	assert.Equal(t, "2024-01-05T10:00:00Z", kept.Fields["createdAt"])
}

func TestSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.json")
	body := `[
		{"id": "a", "createdAt": "2024-01-05T03:00:00Z", "type": "Blood Test"},
		{"createdAt": "2024-01-06T03:00:00Z", "packageId": "p-1"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	ctx := context.Background()
	store := docstore.NewMemoryStore()
	n, err := seedFile(ctx, store, path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	docs, err := store.Find(ctx, services.AppointmentsCollection, docstore.RangeFilters(services.CreatedAtField, &from, &to)...)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSeedFile_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))

	_, err := seedFile(context.Background(), docstore.NewMemoryStore(), path, false)
	assert.ErrorContains(t, err, "parse seed file")
}
