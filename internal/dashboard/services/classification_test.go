package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

func doc(fields map[string]any) docstore.Document {
	return docstore.Document{ID: "a", Fields: fields}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
		want   models.Label
	}{
		{"package checked before test", map[string]any{"type": "package test"}, models.LabelPackage},
		{"test in type", map[string]any{"type": "Blood Test"}, models.LabelTest},
		{"type beats packageId", map[string]any{"type": "Lab Test", "packageId": "p1"}, models.LabelTest},
		{"appointmentType used when type missing", map[string]any{"appointmentType": "Health PACKAGE"}, models.LabelPackage},
		{"serviceType used last", map[string]any{"serviceType": "package"}, models.LabelPackage},
		{"empty type falls through to appointmentType", map[string]any{"type": "", "appointmentType": "package"}, models.LabelPackage},
		{"packageId", map[string]any{"packageId": "p1"}, models.LabelPackage},
		{"package object", map[string]any{"package": map[string]any{"name": "MCU"}}, models.LabelPackage},
		{"empty packageId is absent", map[string]any{"packageId": ""}, models.LabelTest},
		{"nil package is absent", map[string]any{"package": nil}, models.LabelTest},
		{"item of type Package", map[string]any{"items": []any{map[string]any{"type": "Package"}}}, models.LabelPackage},
		{"typed item slice", map[string]any{"items": []map[string]any{{"type": "test"}, {"type": "PACKAGE"}}}, models.LabelPackage},
		{"item type must match exactly", map[string]any{"items": []any{map[string]any{"type": "package deal"}}}, models.LabelTest},
		{"malformed items", map[string]any{"items": "package"}, models.LabelTest},
		{"type neither test nor package", map[string]any{"type": "consultation"}, models.LabelTest},
		{"no signal", map[string]any{}, models.LabelTest},
		{"nil fields", nil, models.LabelTest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(doc(tc.fields), DefaultRules))
		})
	}
}

func TestClassify_RuleOrderIsConfigurable(t *testing.T) {
	d := doc(map[string]any{"type": "test", "packageId": "p1"})
	require.Equal(t, models.LabelTest, Classify(d, DefaultRules))

	reordered := []Rule{DefaultRules[2], DefaultRules[1]}
	assert.Equal(t, models.LabelPackage, Classify(d, reordered))
	assert.Equal(t, DefaultLabel, Classify(d, nil))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, "blood test", TypeOf(doc(map[string]any{"type": "Blood Test"})))
	assert.Equal(t, "", TypeOf(doc(map[string]any{"type": 42})))
}

func TestDocumentDate(t *testing.T) {
	at := time.Date(2024, 1, 5, 8, 0, 0, 0, wib)

	cases := []struct {
		name     string
		fields   map[string]any
		want     time.Time
		strategy string
		ok       bool
	}{
		{"createdAt instant", map[string]any{"createdAt": at, "date": "2020-01-01"}, at, "createdAt", true},
		{"unparseable createdAt falls to date", map[string]any{"createdAt": "soon", "date": "2024-01-05"}, time.Date(2024, 1, 5, 0, 0, 0, 0, wib), "date", true},
		{"zero instant is not a date", map[string]any{"createdAt": time.Time{}, "paidAt": "2024-01-05T01:00:00Z"}, time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC), "paidAt", true},
		{"updatedAt last", map[string]any{"updatedAt": "2024-01-05 08:00:00"}, at, "updatedAt", true},
		{"none", map[string]any{"type": "test"}, time.Time{}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, strategy, ok := DocumentDate(doc(tc.fields), DefaultDateStrategies, wib)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.strategy, strategy)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2024-01-05T08:00:00+07:00", time.Date(2024, 1, 5, 1, 0, 0, 0, time.UTC), true},
		{"rfc3339 nano", "2024-01-05T01:00:00.123Z", time.Date(2024, 1, 5, 1, 0, 0, 123_000_000, time.UTC), true},
		{"local datetime", "2024-01-05T08:00:00", time.Date(2024, 1, 5, 8, 0, 0, 0, wib), true},
		{"date only is local midnight", " 2024-01-05 ", time.Date(2024, 1, 5, 0, 0, 0, 0, wib), true},
		{"epoch millis float", float64(1704416400000), time.Date(2024, 1, 5, 8, 0, 0, 0, wib), true},
		{"firestore export", map[string]any{"_seconds": int64(1704416400), "_nanoseconds": int64(5)}, time.Date(2024, 1, 5, 8, 0, 0, 5, wib), true},
		{"pointer", &time.Time{}, time.Time{}, false},
		{"empty string", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
		{"map without seconds", map[string]any{"day": 5}, time.Time{}, false},
		{"bool", true, time.Time{}, false},
		{"nil", nil, time.Time{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.in, wib)
			assert.Equal(t, tc.ok, ok)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
		})
	}
}
