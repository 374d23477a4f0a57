// Package admin implements the operator-facing surface behind the ml/*
// endpoints: model status, version history, edge-case review, and a manual
// training trigger. It is a thin read/dispatch layer over the
// same persistence ports and Training Worker the submission pipeline uses,
// grounded on the same narrow-interface composition style as the
// orchestrator package.
package admin

import (
	"context"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// Trainer is the narrow view of training.Worker this package needs.
type Trainer interface {
	Trigger(ctx context.Context) error
}

// Admin answers the administrative queries and dispatches manual training
// runs.
type Admin struct {
	registry domain.ModelRegistry
	samples domain.TrainingStore
	edgeCases domain.EdgeCaseLog
	leaderboard domain.Leaderboard
	cheatLog domain.CheatLog
	trainer Trainer
}

// New builds an Admin from its collaborators.
func New(
	registry domain.ModelRegistry,
	samples domain.TrainingStore,
	edgeCases domain.EdgeCaseLog,
	leaderboard domain.Leaderboard,
	cheatLog domain.CheatLog,
	trainer Trainer,
) *Admin {
	return &Admin{
		registry: registry,
		samples: samples,
		edgeCases: edgeCases,
		leaderboard: leaderboard,
		cheatLog: cheatLog,
		trainer: trainer,
	}
}

// Status reports the active model and the aggregate counters feeding the
// scheduler's threshold.
func (a *Admin) Status(ctx context.Context) (Status, error) {
	active, err := a.registry.Active(ctx)
	if err != nil {
		return Status{}, err
	}

	totalSamples, err := a.samples.Count(ctx)
	if err != nil {
		return Status{}, err
	}

	edgeCaseCount, err := a.edgeCases.Total(ctx)
	if err != nil {
		return Status{}, err
	}

	status := Status{TotalSamples: totalSamples, EdgeCaseCount: edgeCaseCount}
	if active != nil {
		status.HasModel = true
		status.ActiveModelID = active.ID
		status.Metrics = active.Metrics
	}
	return status, nil
}

// Status is the ml/status response payload.
type Status struct {
	ActiveModelID string
	HasModel bool
	TotalSamples int
	EdgeCaseCount int
	Metrics domain.ModelMetrics
}

// Versions lists every trained model, most recent first.
func (a *Admin) Versions(ctx context.Context) ([]domain.ModelVersion, error) {
	versions, err := a.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	reverse(versions)
	return versions, nil
}

// TrainingLogEntry is one row of the ml/training-logs response, derived
// from the model registry rather than a separate log since each model
// version already records when it was trained, on how many samples, and
// whether it was ultimately activated.
type TrainingLogEntry struct {
	ModelID string
	CreatedAt int64
	Activated bool
	Metrics domain.ModelMetrics
}

// TrainingLogs returns the most recent limit training runs.
func (a *Admin) TrainingLogs(ctx context.Context, limit int) ([]TrainingLogEntry, error) {
	versions, err := a.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	reverse(versions)
	if limit > 0 && len(versions) > limit {
		versions = versions[:limit]
	}

	entries := make([]TrainingLogEntry, 0, len(versions))
	for _, v := range versions {
		entries = append(entries, TrainingLogEntry{
			ModelID: v.ID,
			CreatedAt: v.CreatedAt.Unix(),
			Activated: v.Active,
			Metrics: v.Metrics,
		})
	}
	return entries, nil
}

// EdgeCases returns the most recent limit edge cases logged by the arbiter.
func (a *Admin) EdgeCases(ctx context.Context, limit int) ([]domain.EdgeCase, error) {
	return a.edgeCases.Recent(ctx, limit)
}

// Leaderboard returns the top limit leaderboard entries.
func (a *Admin) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	return a.leaderboard.Top(ctx, limit)
}

// CheatLog returns the top limit cheat records.
func (a *Admin) CheatLog(ctx context.Context, limit int) ([]domain.CheatRecord, error) {
	return a.cheatLog.Top(ctx, limit)
}

// Train forces an out-of-band training run. The Training Worker's own
// in-progress/pending CAS guard still applies, so this is safe to
// call even while a scheduled run is already underway.
func (a *Admin) Train(ctx context.Context) error {
	return a.trainer.Trigger(ctx)
}

func reverse(versions []domain.ModelVersion) {
	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
}
