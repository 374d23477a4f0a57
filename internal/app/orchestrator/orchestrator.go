// Package orchestrator implements the Submission Orchestrator:
// the pipeline entry point that carries a submission through
//
//	Received -> Validated -> SessionMatched -> RulesPassed -> Replayed ->
//	FeatureExtracted -> Predicted -> Arbitrated -> Accepted | Rejected
//
// Rule evaluation (which covers SessionMatched through Replayed) is
// delegated to rules.Evaluate; this package owns the steps around it: rate
// limiting, field validation, feature extraction, ML prediction,
// edge-case arbitration, and the accept/reject persistence side effects.
// It favors a request-handling composition style: a struct of narrow,
// independently-testable collaborator interfaces wired together by one
// top-level method, rather than a God object reaching into
// infrastructure packages directly.
package orchestrator

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/arbiter"
	"github.com/snakeguard/snakeguard/internal/infra/features"
	"github.com/snakeguard/snakeguard/internal/infra/observability"
	"github.com/snakeguard/snakeguard/internal/infra/rules"
)

// RateLimiter is the narrow view of ratelimit.Limiter the orchestrator
// needs.
type RateLimiter interface {
	Allow(key string) bool
}

// SessionStore is the narrow view of registry.Registry the orchestrator
// needs; Lookup matches rules.SessionLookup exactly so it can be
// passed straight through to rules.Evaluate.
type SessionStore interface {
	Put(session domain.GameSession)
	Lookup(ctx context.Context, playerID string) (domain.GameSession, bool)
	Delete(playerID string)
}

// Predictor is the narrow view of ml.Predictor the orchestrator needs.
type Predictor interface {
	Predict(features domain.FeatureVector, score int) float64
}

// Trainer is the narrow view of training.Worker the orchestrator needs:
// an event notification on cheat detection (the debouncer inside the
// Training Worker is what makes firing this on every rejection safe).
type Trainer interface {
	Trigger(ctx context.Context) error
}

// Orchestrator wires the rate limiter, session registry, rule detectors,
// feature extractor, ML predictor, and edge-case arbiter into the single
// submission pipeline, and owns the accept/reject persistence side
// effects.
type Orchestrator struct {
	limiter RateLimiter
	sessions SessionStore
	leaderboard domain.Leaderboard
	cheatLog domain.CheatLog
	edgeCases domain.EdgeCaseLog
	samples domain.TrainingStore
	predictor Predictor
	trainer Trainer
	tracer *observability.Tracer

	newID func() string
	now func() time.Time
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithIDGenerator injects a deterministic ID generator for tests.
func WithIDGenerator(f func() string) Option { return func(o *Orchestrator) { o.newID = f } }

// WithTracer attaches a Tracer; one span is recorded around the whole
// Submit call, covering every pipeline stage.
func WithTracer(tr *observability.Tracer) Option { return func(o *Orchestrator) { o.tracer = tr } }

// New builds an Orchestrator from its collaborators.
func New(
	limiter RateLimiter,
	sessions SessionStore,
	leaderboard domain.Leaderboard,
	cheatLog domain.CheatLog,
	edgeCases domain.EdgeCaseLog,
	samples domain.TrainingStore,
	predictor Predictor,
	trainer Trainer,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		limiter: limiter,
		sessions: sessions,
		leaderboard: leaderboard,
		cheatLog: cheatLog,
		edgeCases: edgeCases,
		samples: samples,
		predictor: predictor,
		trainer: trainer,
		newID: uuid.NewString,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartGame creates a fresh GameSession for playerID with a random seed,
// overwriting any session the player already had in flight (the
// last-write-wins invariant), and returns the seed the client must echo
// back on submission.
func (o *Orchestrator) StartGame(_ context.Context, playerID string) uint32 {
	seed := rand.Uint32()
	o.sessions.Put(domain.GameSession{
		PlayerID: playerID,
		Seed: seed,
		StartTime: o.now(),
	})
	return seed
}

// Result is the accept-path outcome returned to the API layer.
type Result struct {
	BestScore int
	Rank int
	IsNewBest bool
}

// Submit carries sub through the full pipeline and returns either a
// Result (accepted) or a *SubmissionError (rejected) describing why.
func (o *Orchestrator) Submit(ctx context.Context, sub domain.Submission) (Result, error) {
	span := o.startSpan("orchestrator.submit", sub.PlayerID)
	start := o.now()
	var outcome string
	defer func() {
		observability.SubmissionDuration.Observe(float64(o.now().Sub(start).Milliseconds()))
		observability.SubmissionsTotal.WithLabelValues(outcome).Inc()
	}()

	if !o.limiter.Allow(sub.PlayerID) {
		observability.RateLimitRejections.Inc()
		outcome = "rate_limited"
		o.endSpan(span, rateLimitedError())
		return Result{}, rateLimitedError()
	}

	if err := validate(sub); err != nil {
		outcome = "validation_failed"
		o.endSpan(span, err)
		return Result{}, validationError(err)
	}

	verdict := rules.Evaluate(ctx, sub, o.sessions.Lookup)
	if verdict.Cheat {
		observability.RuleFires.WithLabelValues(string(verdict.Kind)).Inc()
	}

	fv := features.Extract(sub)
	probability := o.predictor.Predict(fv, sub.Score)
	observability.MLProbability.Observe(probability)

	if ec, isEdge, err := arbiter.Arbitrate(ctx, o.edgeCases, sub.PlayerID, sub.Score, verdict, probability, fv, o.newID, o.now); isEdge {
		if err != nil {
			outcome = "internal_error"
			wrapped := internalError("arbiter.Arbitrate", err)
			o.endSpan(span, wrapped)
			return Result{}, wrapped
		}
		observability.EdgeCasesTotal.WithLabelValues(string(ec.EdgeType)).Inc()
	}

	if verdict.Cheat {
		result, err := o.reject(ctx, sub, verdict, fv)
		outcome = "rejected"
		o.endSpan(span, err)
		return result, err
	}

	result, err := o.accept(ctx, sub, fv)
	if err != nil {
		outcome = "internal_error"
	} else {
		outcome = "accepted"
	}
	o.endSpan(span, err)
	return result, err
}

// reject records the cheat, stores a labeled training sample, and notifies
// the Training Worker, per the fall-through-to-Rejected semantics.
func (o *Orchestrator) reject(ctx context.Context, sub domain.Submission, verdict domain.RuleVerdict, fv domain.FeatureVector) (Result, error) {
	rec := domain.CheatRecord{
		ID: o.newID(),
		PlayerID: sub.PlayerID,
		Score: sub.Score,
		Kind: verdict.Kind,
		Reason: verdict.Reason,
		Seed: sub.Seed,
		SubmittedAt: o.now(),
	}
	if err := o.cheatLog.Record(ctx, rec); err != nil {
		return Result{}, internalError("cheatLog.Record", err)
	}

	sample := domain.TrainingSample{
		ID: o.newID(),
		PlayerID: sub.PlayerID,
		Features: fv,
		Label: domain.LabelCheat,
		Source: domain.SourceRule,
		CreatedAt: o.now(),
	}
	if err := o.samples.Append(ctx, sample); err != nil {
		return Result{}, internalError("samples.Append", err)
	}

	if o.trainer != nil {
		go o.trainer.Trigger(context.Background())
	}

	return Result{}, cheatError(verdict.Kind, verdict.Reason)
}

// accept deletes the now-finished session, appends the score to the
// leaderboard, and records an unlabeled (legit) training sample, per
// the Accepted semantics.
func (o *Orchestrator) accept(ctx context.Context, sub domain.Submission, fv domain.FeatureVector) (Result, error) {
	prevBest, err := o.leaderboard.Best(ctx, sub.PlayerID)
	if err != nil {
		return Result{}, internalError("leaderboard.Best", err)
	}

	entry := domain.LeaderboardEntry{
		PlayerID: sub.PlayerID,
		Score: sub.Score,
		FoodEaten: sub.FoodEaten,
		RecordedAt: o.now(),
	}
	if err := o.leaderboard.Submit(ctx, entry); err != nil {
		return Result{}, internalError("leaderboard.Submit", err)
	}

	rank, err := o.leaderboard.Rank(ctx, sub.PlayerID)
	if err != nil {
		return Result{}, internalError("leaderboard.Rank", err)
	}

	isNewBest := prevBest == nil || sub.Score > prevBest.Score
	bestScore := sub.Score
	if !isNewBest {
		bestScore = prevBest.Score
	}

	sample := domain.TrainingSample{
		ID: o.newID(),
		PlayerID: sub.PlayerID,
		Features: fv,
		Label: domain.LabelLegit,
		Source: domain.SourceRule,
		CreatedAt: o.now(),
	}
	if err := o.samples.Append(ctx, sample); err != nil {
		return Result{}, internalError("samples.Append", err)
	}

	o.sessions.Delete(sub.PlayerID)

	return Result{BestScore: bestScore, Rank: rank, IsNewBest: isNewBest}, nil
}

func (o *Orchestrator) startSpan(op, playerID string) *observability.Span {
	if o.tracer == nil {
		return nil
	}
	return o.tracer.StartSpan(op, playerID)
}

func (o *Orchestrator) endSpan(span *observability.Span, err error) {
	if o.tracer == nil || span == nil {
		return
	}
	o.tracer.EndSpan(span, err)
}
