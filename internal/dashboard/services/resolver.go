package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
)

// Resolver owns the single visible breakdown slot of one dashboard consumer.
// Every Resolve call takes the next generation number; only the call holding
// the newest generation when it finishes may update the slot.
type Resolver struct {
	svc     *BreakdownService
	onApply func(models.Outcome)

	mu     sync.Mutex
	issued uint64
	cancel context.CancelFunc
	state  models.ResolveState
	latest models.Outcome

	// pubMu orders onApply calls; published is the newest generation handed
	// to onApply.
	pubMu     sync.Mutex
	published uint64
}

// NewResolver creates an idle resolver. onApply, if set, is called with every
// outcome that reaches the visible slot, outside the resolver lock and in
// increasing generation order. A generation older than one already handed to
// onApply is not delivered.
func NewResolver(svc *BreakdownService, onApply func(models.Outcome)) *Resolver {
	return &Resolver{
		svc:     svc,
		onApply: onApply,
		state:   models.StateIdle,
		latest:  models.Outcome{State: models.StateIdle},
	}
}

// Resolve computes the breakdown for r, superseding any call still in flight.
// Failures and panics are absorbed into a zero result with StateDegraded. A
// superseded call returns Superseded=true, and a call whose ctx was cancelled
// by the caller returns Cancelled=true; neither touches the slot.
func (r *Resolver) Resolve(ctx context.Context, rng models.DateRange) models.Outcome {
	r.mu.Lock()
	r.issued++
	gen := r.issued
	if r.cancel != nil {
		r.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = models.StateResolving
	r.mu.Unlock()
	defer cancel()

	res, err := r.compute(callCtx, rng)
	state := models.StateResolved
	if err != nil {
		res = models.BreakdownResult{}
		state = models.StateDegraded
	}

	r.mu.Lock()
	if gen != r.issued {
		r.mu.Unlock()
		r.svc.Log.Debug("discarding superseded breakdown", zap.Uint64("generation", gen))
		return models.Outcome{Range: rng, Generation: gen, Superseded: true, State: state}
	}
	if ctx.Err() != nil {
		r.state = r.latest.State
		r.cancel = nil
		prev := r.state
		r.mu.Unlock()
		r.svc.Log.Debug("discarding cancelled breakdown", zap.Uint64("generation", gen), zap.Error(ctx.Err()))
		return models.Outcome{Range: rng, Generation: gen, Cancelled: true, State: prev}
	}
	if err != nil {
		r.svc.Log.Warn("appointment breakdown degraded to zero",
			zap.String("start", rng.Start), zap.String("end", rng.End), zap.Error(err))
	}
	out := models.Outcome{BreakdownResult: res, Range: rng, Generation: gen, State: state}
	r.latest = out
	r.state = state
	r.cancel = nil
	r.mu.Unlock()

	r.publish(out)
	return out
}

func (r *Resolver) compute(ctx context.Context, rng models.DateRange) (res models.BreakdownResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("breakdown panicked: %v", p)
		}
	}()
	return r.svc.Compute(ctx, rng)
}

func (r *Resolver) publish(out models.Outcome) {
	if r.onApply == nil {
		return
	}
	r.pubMu.Lock()
	defer r.pubMu.Unlock()
	if out.Generation <= r.published {
		return
	}
	r.published = out.Generation
	r.onApply(out)
}

// Latest returns the last applied outcome.
func (r *Resolver) Latest() models.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func (r *Resolver) State() models.ResolveState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Generation returns the newest generation handed out; Close also advances it.
func (r *Resolver) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.issued
}

// Close cancels the in-flight call, if any, and discards its eventual result.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.state == models.StateResolving {
		r.state = r.latest.State
	}
}
