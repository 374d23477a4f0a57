// Package registry implements the in-memory Session Registry:
// a mutex-protected map of in-flight game sessions with TTL eviction. It is
// grounded on the ticker-driven periodic sweep of a SWIM-style membership
// protocol (a blocking Start(ctx) loop alternating on a ticker, reaping
// stale entries under the same lock used by the hot path) adapted from a
// peer-liveness table to a per-player session table.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Defaults
const (
	DefaultTTL = 30 * time.Minute
	DefaultSweepEvery = 5 * time.Minute
)

type entry struct {
	session domain.GameSession
	expireAt time.Time
}

// Registry holds at most one live GameSession per player.
// Creating a new session for a player overwrites the old one
// (last-write-wins).
type Registry struct {
	mu sync.Mutex
	sessions map[string]entry

	ttl time.Duration
	sweepEvery time.Duration
	now func() time.Time
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithTTL overrides the session idle TTL.
func WithTTL(d time.Duration) Option { return func(r *Registry) { r.ttl = d } }

// WithSweepInterval overrides the sweep period.
func WithSweepInterval(d time.Duration) Option { return func(r *Registry) { r.sweepEvery = d } }

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// New builds a Registry with the defaults above, applying any Options.
func New(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]entry),
		ttl: DefaultTTL,
		sweepEvery: DefaultSweepEvery,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs the periodic TTL sweep until ctx is cancelled. Intended to be
// run in its own goroutine from the composition root.
func (r *Registry) Start(ctx context.Context) {
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// Put creates (or overwrites) the live session for playerID.
func (r *Registry) Put(session domain.GameSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.PlayerID] = entry{
		session: session,
		expireAt: r.now().Add(r.ttl),
	}
}

// Get returns the live session for playerID, if one exists and has not
// expired.
func (r *Registry) Get(playerID string) (domain.GameSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[playerID]
	if !ok || r.now().After(e.expireAt) {
		return domain.GameSession{}, false
	}
	return e.session, true
}

// Lookup adapts Get to the rules.SessionLookup function signature.
func (r *Registry) Lookup(_ context.Context, playerID string) (domain.GameSession, bool) {
	return r.Get(playerID)
}

// Delete removes the player's live session, e.g. after an accepted
// submission.
func (r *Registry) Delete(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, playerID)
}

// Len reports the number of live (not necessarily unexpired) entries;
// useful for tests and metrics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.sessions {
		if now.After(e.expireAt) {
			delete(r.sessions, id)
		}
	}
}
