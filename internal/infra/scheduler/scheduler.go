// Package scheduler implements the periodic edge-case watchdog: it polls
// the accumulated edge-case count and triggers a training run once the
// count crosses a threshold. It never trains anything itself; it only
// decides when the Training Worker should be asked to. The same
// ticker-driven sweep shape as registry.Registry and ratelimit.Limiter.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Defaults
const (
	DefaultPeriod = 30 * time.Minute
	DefaultThreshold = 10
	DefaultCooldown = 2 * time.Hour
)

// Trainer is the subset of training.Worker the Scheduler depends on. It
// is expressed as an interface so the Scheduler can be tested without a
// real Training Worker.
type Trainer interface {
	Trigger(ctx context.Context) error
}

// Scheduler periodically compares the total edge-case count against the
// last observed count and asks Trainer to run when the accumulated delta
// and cooldown conditions are both satisfied.
type Scheduler struct {
	edgeCases domain.EdgeCaseLog
	trainer Trainer

	period time.Duration
	threshold int
	cooldown time.Duration
	now func() time.Time

	mu sync.Mutex
	lastObservedTotal int
	lastCompletionAt time.Time
	haveCompletedOnce bool
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

func WithPeriod(d time.Duration) Option { return func(s *Scheduler) { s.period = d } }
func WithThreshold(n int) Option { return func(s *Scheduler) { s.threshold = n } }
func WithCooldown(d time.Duration) Option { return func(s *Scheduler) { s.cooldown = d } }
func WithClock(now func() time.Time) Option { return func(s *Scheduler) { s.now = now } }

// New builds a Scheduler with the defaults above, applying any Options.
func New(edgeCases domain.EdgeCaseLog, trainer Trainer, opts ...Option) *Scheduler {
	s := &Scheduler{
		edgeCases: edgeCases,
		trainer: trainer,
		period: DefaultPeriod,
		threshold: DefaultThreshold,
		cooldown: DefaultCooldown,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the periodic tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one evaluation of the trigger conditions. It is exported so
// tests (and an event-driven caller reacting to a cheat detection) can
// invoke it without waiting on the ticker.
func (s *Scheduler) Tick(ctx context.Context) {
	total, err := s.edgeCases.Total(ctx)
	if err != nil {
		return
	}

	s.mu.Lock()
	delta := total - s.lastObservedTotal
	cooldownElapsed := !s.haveCompletedOnce || s.now().Sub(s.lastCompletionAt) >= s.cooldown
	shouldTrigger := delta >= s.threshold && cooldownElapsed
	if shouldTrigger {
		s.lastObservedTotal = total
	}
	s.mu.Unlock()

	if !shouldTrigger {
		return
	}

	if err := s.trainer.Trigger(ctx); err == nil {
		s.mu.Lock()
		s.lastCompletionAt = s.now()
		s.haveCompletedOnce = true
		s.mu.Unlock()
	}
}
