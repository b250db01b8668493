package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

const (
	AppointmentsCollection = "appointments"
	CreatedAtField         = "createdAt"
)

// BreakdownService menghitung jumlah appointment test dan paket dalam rentang
// tanggal dari koleksi appointments.
type BreakdownService struct {
	Store      docstore.Finder
	Loc        *time.Location
	Collection string
	Rules      []Rule
	Dates      []DateStrategy
	Log        *zap.Logger
}

func NewBreakdownService(store docstore.Finder, loc *time.Location, log *zap.Logger) *BreakdownService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BreakdownService{
		Store:      store,
		Loc:        loc,
		Collection: AppointmentsCollection,
		Rules:      DefaultRules,
		Dates:      DefaultDateStrategies,
		Log:        log,
	}
}

// Compute runs one resolution cycle and reports any failure to the caller.
func (s *BreakdownService) Compute(ctx context.Context, r models.DateRange) (models.BreakdownResult, error) {
	var res models.BreakdownResult

	from, to, err := docstore.Bounds(r.Start, r.End, s.Loc)
	if err != nil {
		return res, err
	}

	docs, err := s.Store.Find(ctx, s.Collection, docstore.RangeFilters(CreatedAtField, from, to)...)
	if err != nil {
		return res, fmt.Errorf("primary query: %w", err)
	}
	s.Log.Debug("primary breakdown query",
		zap.String("start", r.Start), zap.String("end", r.End), zap.Int("docs", len(docs)))

	if len(docs) == 0 {
		docs, err = s.fallback(ctx, from, to)
		if err != nil {
			return res, err
		}
	}

	for _, d := range docs {
		res.Add(Classify(d, s.Rules))
	}
	return res, nil
}

// fallback fetches the whole collection for legacy records without createdAt.
// Only a fully bounded range is re-filtered; a half-open range keeps every record.
func (s *BreakdownService) fallback(ctx context.Context, from, to *time.Time) ([]docstore.Document, error) {
	all, err := s.Store.Find(ctx, s.Collection)
	if err != nil {
		return nil, fmt.Errorf("fallback query: %w", err)
	}
	if from == nil || to == nil {
		s.Log.Debug("fallback breakdown query, unfiltered", zap.Int("docs", len(all)))
		return all, nil
	}

	kept := all[:0]
	for _, d := range all {
		t, _, ok := DocumentDate(d, s.Dates, s.Loc)
		if ok && !t.Before(*from) && !t.After(*to) {
			kept = append(kept, d)
		}
	}
	s.Log.Debug("fallback breakdown query",
		zap.Int("docs", len(all)), zap.Int("in_range", len(kept)))
	return kept, nil
}
