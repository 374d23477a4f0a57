// Package ratelimit implements the per-player sliding-window rate
// limiter. It uses the same mutex-protected-map-plus-sweep shape as the
// session registry (registry.Registry), itself modeled on the
// ticker-driven reap loop of a SWIM-style membership protocol; a
// generic token-bucket library does not fit here because the sweep
// must GC per-player event timestamps older than an hour, not just
// refill a bucket (see DESIGN.md for the full rejection rationale).
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults
const (
	DefaultLimit = 10
	DefaultWindow = 60 * time.Second
	DefaultGCAfter = time.Hour
	DefaultSweepEvery = 10 * time.Minute
)

// Limiter enforces a sliding window of at most Limit events per Window,
// per player key. Entries older than GCAfter are dropped during the
// periodic sweep so memory does not grow unbounded for one-time visitors.
type Limiter struct {
	mu sync.Mutex
	events map[string][]time.Time

	limit int
	window time.Duration
	gcAfter time.Duration
	sweepEvery time.Duration
	now func() time.Time
}

// Option configures a Limiter at construction.
type Option func(*Limiter)

func WithLimit(n int) Option { return func(l *Limiter) { l.limit = n } }
func WithWindow(d time.Duration) Option { return func(l *Limiter) { l.window = d } }
func WithGCAfter(d time.Duration) Option { return func(l *Limiter) { l.gcAfter = d } }
func WithSweepEvery(d time.Duration) Option { return func(l *Limiter) { l.sweepEvery = d } }
func WithClock(now func() time.Time) Option { return func(l *Limiter) { l.now = now } }

// New builds a Limiter with the defaults above, applying any Options.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		events: make(map[string][]time.Time),
		limit: DefaultLimit,
		window: DefaultWindow,
		gcAfter: DefaultGCAfter,
		sweepEvery: DefaultSweepEvery,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start runs the periodic GC sweep until ctx is cancelled.
func (l *Limiter) Start(ctx context.Context) {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// Allow records one event for key and reports whether it falls within the
// sliding window limit. A false return is the backpressure signal the
// Orchestrator translates to a 429-equivalent rejection.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := dropBefore(l.events[key], cutoff)

	if len(kept) >= l.limit {
		l.events[key] = kept
		return false
	}

	l.events[key] = append(kept, now)
	return true
}

func dropBefore(events []time.Time, cutoff time.Time) []time.Time {
	kept := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.gcAfter)
	for key, events := range l.events {
		kept := dropBefore(events, cutoff)
		if len(kept) == 0 {
			delete(l.events, key)
			continue
		}
		l.events[key] = kept
	}
}
