package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

var february = models.DateRange{Start: "2024-02-01", End: "2024-02-29"}

func packages(n int) []docstore.Document {
	docs := make([]docstore.Document, n)
	for i := range docs {
		docs[i] = doc(map[string]any{"type": "package"})
	}
	return docs
}

// gatedFinder blocks the January primary query until release is closed.
// It ignores cancellation when honourCtx is false, simulating a store that
// answers after the caller has moved on.
type gatedFinder struct {
	started   chan struct{}
	release   chan struct{}
	honourCtx bool
}

func newGatedFinder(honourCtx bool) *gatedFinder {
	return &gatedFinder{started: make(chan struct{}), release: make(chan struct{}), honourCtx: honourCtx}
}

func (g *gatedFinder) Find(ctx context.Context, _ string, fs ...docstore.Filter) ([]docstore.Document, error) {
	if len(fs) == 0 || fs[0].Value.Month() != time.January {
		return []docstore.Document{doc(map[string]any{"type": "Blood Test"})}, nil
	}
	close(g.started)
	if g.honourCtx {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		<-g.release
	}
	return packages(3), nil
}

type applied struct {
	mu   sync.Mutex
	outs []models.Outcome
}

func (a *applied) record(o models.Outcome) {
	a.mu.Lock()
	a.outs = append(a.outs, o)
	a.mu.Unlock()
}

func (a *applied) all() []models.Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Outcome(nil), a.outs...)
}

func TestResolver_Resolve(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got applied
	r := NewResolver(newService(seed(t,
		map[string]any{"createdAt": "2024-01-05", "type": "Blood Test"},
		map[string]any{"createdAt": "2024-01-06", "packageId": "x"},
	)), got.record)

	assert.Equal(t, models.StateIdle, r.State())
	assert.Equal(t, models.StateIdle, r.Latest().State)

	out := r.Resolve(context.Background(), january)
	assert.Equal(t, models.BreakdownResult{Test: 1, Packages: 1}, out.BreakdownResult)
	assert.Equal(t, uint64(1), out.Generation)
	assert.False(t, out.Superseded)
	assert.Equal(t, models.StateResolved, out.State)
	assert.Equal(t, out, r.Latest())
	assert.Equal(t, models.StateResolved, r.State())
	assert.Equal(t, []models.Outcome{out}, got.all())
}

func TestResolver_FailureDegradesToZero(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls int
	r := NewResolver(newService(finderFunc(func(context.Context, string, ...docstore.Filter) ([]docstore.Document, error) {
		calls++
		if calls == 1 {
			return packages(2), nil
		}
		return nil, errors.New("connection reset")
	})), nil)

	first := r.Resolve(context.Background(), january)
	require.Equal(t, models.BreakdownResult{Packages: 2}, first.BreakdownResult)

	out := r.Resolve(context.Background(), february)
	assert.Equal(t, models.BreakdownResult{}, out.BreakdownResult)
	assert.Equal(t, models.StateDegraded, out.State)
	assert.False(t, out.Superseded)
	assert.Equal(t, out, r.Latest(), "a degraded result still replaces the previous one")
}

func TestResolver_MalformedRangeDegrades(t *testing.T) {
	r := NewResolver(newService(seed(t, map[string]any{"type": "test"})), nil)
	out := r.Resolve(context.Background(), models.DateRange{End: "2024-13-45"})
	assert.Equal(t, models.StateDegraded, out.State)
	assert.Zero(t, out.Test)
}

func TestResolver_SupersededResultIsDiscarded(t *testing.T) {
	for _, honourCtx := range []bool{false, true} {
		name := "store ignores cancellation"
		if honourCtx {
			name = "store honours cancellation"
		}
		t.Run(name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			g := newGatedFinder(honourCtx)
			var got applied
			r := NewResolver(newService(g), got.record)

			doneA := make(chan models.Outcome)
			go func() { doneA <- r.Resolve(context.Background(), january) }()
			<-g.started
			assert.Equal(t, models.StateResolving, r.State())

			outB := r.Resolve(context.Background(), february)
			require.False(t, outB.Superseded)
			require.Equal(t, models.BreakdownResult{Test: 1}, outB.BreakdownResult)

			close(g.release)
			outA := <-doneA

			assert.True(t, outA.Superseded)
			assert.Equal(t, uint64(1), outA.Generation)
			assert.Equal(t, models.BreakdownResult{}, outA.BreakdownResult)
			assert.Equal(t, outB, r.Latest())
			assert.Equal(t, []models.Outcome{outB}, got.all())
		})
	}
}

func TestResolver_CloseDiscardsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGatedFinder(false)
	var got applied
	r := NewResolver(newService(g), got.record)

	done := make(chan models.Outcome)
	go func() { done <- r.Resolve(context.Background(), january) }()
	<-g.started

	r.Close()
	assert.Equal(t, models.StateIdle, r.State())
	close(g.release)

	out := <-done
	assert.True(t, out.Superseded)
	assert.Empty(t, got.all())
	assert.Equal(t, uint64(2), r.Generation())
}

func TestResolverPool(t *testing.T) {
	type pub struct {
		user string
		out  models.Outcome
	}
	var (
		mu   sync.Mutex
		pubs []pub
	)
	pool := NewResolverPool(newService(seed(t, map[string]any{"createdAt": time.Date(2024, 1, 2, 0, 0, 0, 0, wib)})),
		func(user string, o models.Outcome) {
			mu.Lock()
			pubs = append(pubs, pub{user, o})
			mu.Unlock()
		})

	a := pool.For("admin")
	assert.Same(t, a, pool.For("admin"))
	b := pool.For("kasir")
	assert.NotSame(t, a, b)

	out := a.Resolve(context.Background(), january)
	b.Resolve(context.Background(), january)
	assert.Equal(t, uint64(1), out.Generation, "users do not share generations")

	mu.Lock()
	require.Len(t, pubs, 2)
	assert.Equal(t, "admin", pubs[0].user)
	assert.Equal(t, out, pubs[0].out)
	mu.Unlock()

	assert.True(t, pool.Release("admin"))
	assert.False(t, pool.Release("kasir-lama"))
	assert.NotSame(t, a, pool.For("admin"))

	pool.Close()
	assert.NotSame(t, b, pool.For("kasir"))
}

func TestResolver_PushesEndOnNewestGeneration(t *testing.T) {
	defer goleak.VerifyNone(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var got applied
	r := NewResolver(newService(seed(t,
		map[string]any{"createdAt": time.Date(2024, 1, 2, 9, 0, 0, 0, wib), "packageId": "x"},
	)), func(o models.Outcome) {
		if o.Generation == 1 {
			close(entered)
			<-release
		}
		got.record(o)
	})

	doneA := make(chan models.Outcome)
	go func() { doneA <- r.Resolve(context.Background(), january) }()
	<-entered

	// generation 2 reaches the slot while generation 1 is still being pushed
	doneB := make(chan models.Outcome)
	go func() { doneB <- r.Resolve(context.Background(), february) }()
	require.Eventually(t, func() bool { return r.Latest().Generation == 2 }, time.Second, 5*time.Millisecond)

	close(release)
	outA, outB := <-doneA, <-doneB
	require.True(t, outA.Applied())
	require.True(t, outB.Applied())

	pushed := got.all()
	require.NotEmpty(t, pushed)
	assert.Equal(t, outB, pushed[len(pushed)-1])
	assert.Equal(t, outB, r.Latest())
}

func TestResolver_PublishSkipsOlderGeneration(t *testing.T) {
	var got applied
	r := NewResolver(newService(seed(t)), got.record)

	newer := models.Outcome{Generation: 2, State: models.StateResolved}
	older := models.Outcome{Generation: 1, State: models.StateResolved, BreakdownResult: models.BreakdownResult{Packages: 4}}
	r.publish(newer)
	r.publish(older)

	assert.Equal(t, []models.Outcome{newer}, got.all())
}

func TestResolver_CancelledCallLeavesSlot(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got applied
	r := NewResolver(newService(seed(t,
		map[string]any{"createdAt": time.Date(2024, 1, 6, 9, 0, 0, 0, wib), "packageId": "x"},
	)), got.record)

	first := r.Resolve(context.Background(), january)
	require.Equal(t, models.BreakdownResult{Packages: 1}, first.BreakdownResult)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := r.Resolve(ctx, february)

	assert.True(t, out.Cancelled)
	assert.False(t, out.Applied())
	assert.Equal(t, models.BreakdownResult{}, out.BreakdownResult)
	assert.Equal(t, first, r.Latest())
	assert.Equal(t, models.StateResolved, r.State())
	assert.Equal(t, []models.Outcome{first}, got.all())
}

func TestResolver_CancelledWhileStoreIgnoresIt(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGatedFinder(false)
	var got applied
	r := NewResolver(newService(g), got.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan models.Outcome)
	go func() { done <- r.Resolve(ctx, january) }()
	<-g.started
	cancel()
	close(g.release)

	out := <-done
	assert.True(t, out.Cancelled)
	assert.Empty(t, got.all())
	assert.Equal(t, models.StateIdle, r.State())
	assert.Equal(t, models.StateIdle, r.Latest().State)
}

func TestResolver_PanicDegradesToZero(t *testing.T) {
	var got applied
	r := NewResolver(newService(finderFunc(func(context.Context, string, ...docstore.Filter) ([]docstore.Document, error) {
		panic("rule exploded")
	})), got.record)

	var out models.Outcome
	require.NotPanics(t, func() { out = r.Resolve(context.Background(), january) })
	assert.Equal(t, models.StateDegraded, out.State)
	assert.Equal(t, models.BreakdownResult{}, out.BreakdownResult)
	assert.True(t, out.Applied())
	assert.Equal(t, out, r.Latest())
	assert.Equal(t, []models.Outcome{out}, got.all())
}

func TestResolverPool_ReleaseKeepsBusyResolver(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := newGatedFinder(false)
	pool := NewResolverPool(newService(g), nil)
	r := pool.For("admin")

	done := make(chan models.Outcome)
	go func() { done <- r.Resolve(context.Background(), january) }()
	<-g.started

	assert.False(t, pool.Release("admin"))
	assert.Same(t, r, pool.For("admin"))

	close(g.release)
	out := <-done
	assert.True(t, out.Applied())
	assert.Equal(t, models.BreakdownResult{Packages: 3}, out.BreakdownResult)

	assert.True(t, pool.Release("admin"))
	pool.Close()
}
