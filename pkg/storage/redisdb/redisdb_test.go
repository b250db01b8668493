package redisdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "appointments:doc:a1", docKey("appointments", "a1"))
	assert.Equal(t, "appointments:ids", idsKey("appointments"))
	assert.Equal(t, "appointments:idx:createdAt", idxKey("appointments", "createdAt"))
}

func TestScoreRange(t *testing.T) {
	from := time.UnixMilli(1704067200000)
	to := time.UnixMilli(1706745599999)

	zr := ScoreRange(docstore.Range{Field: "createdAt", Min: &from, Max: &to})
	assert.Equal(t, "1704067200000", zr.Min)
	assert.Equal(t, "1706745599999", zr.Max)

	zr = ScoreRange(docstore.Range{Field: "createdAt", Max: &to})
	assert.Equal(t, "-inf", zr.Min)

	zr = ScoreRange(docstore.Range{})
	assert.Equal(t, "-inf", zr.Min)
	assert.Equal(t, "+inf", zr.Max)
}

func TestDecode(t *testing.T) {
	at := time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC)
	b, err := msgpack.Marshal(map[string]any{
		"createdAt": at,
		"type":      "Blood Test",
		"items":     []any{map[string]any{"type": "Package"}},
	})
	require.NoError(t, err)

	d, err := Decode("a1", b)
	require.NoError(t, err)
	assert.Equal(t, "a1", d.ID)
	got, ok := d.Fields["createdAt"].(time.Time)
	require.True(t, ok, "msgpack keeps timestamps as native instants")
	assert.True(t, at.Equal(got))

	items, ok := d.Fields["items"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "Package"}, items[0])

	_, err = Decode("bad", []byte{0xc1})
	assert.Error(t, err)
}
