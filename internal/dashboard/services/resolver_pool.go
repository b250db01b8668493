package services

import (
	"sync"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
)

// ResolverPool keeps one Resolver per dashboard user so that a user's newer
// request supersedes only their own older one. Users are management accounts
// holding a valid token; a resolver is dropped again by Release once the
// user's last dashboard socket disconnects.
type ResolverPool struct {
	svc     *BreakdownService
	publish func(user string, o models.Outcome)

	mu        sync.Mutex
	resolvers map[string]*Resolver
}

// NewResolverPool creates a pool. publish, if set, receives every applied
// outcome together with the user it belongs to.
func NewResolverPool(svc *BreakdownService, publish func(user string, o models.Outcome)) *ResolverPool {
	return &ResolverPool{
		svc:       svc,
		publish:   publish,
		resolvers: make(map[string]*Resolver),
	}
}

// For returns the resolver of user, creating it on first use.
func (p *ResolverPool) For(user string) *Resolver {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r, ok := p.resolvers[user]; ok {
		return r
	}
	var onApply func(models.Outcome)
	if p.publish != nil {
		onApply = func(o models.Outcome) { p.publish(user, o) }
	}
	r := NewResolver(p.svc, onApply)
	p.resolvers[user] = r
	return r
}

// Release closes and forgets the resolver of user. A resolver with a call in
// flight is kept so that the pending HTTP request still gets its result.
func (p *ResolverPool) Release(user string) bool {
	p.mu.Lock()
	r, ok := p.resolvers[user]
	if !ok || r.State() == models.StateResolving {
		p.mu.Unlock()
		return false
	}
	delete(p.resolvers, user)
	p.mu.Unlock()
	r.Close()
	return true
}

// Close closes every resolver in the pool.
func (p *ResolverPool) Close() {
	p.mu.Lock()
	rs := p.resolvers
	p.resolvers = make(map[string]*Resolver)
	p.mu.Unlock()
	for _, r := range rs {
		r.Close()
	}
}
