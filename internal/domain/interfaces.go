package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers. Infrastructure
// implements them; the application layer (orchestrator) depends on them.

// Leaderboard abstracts the opaque hall-of-fame persistence port.
type Leaderboard interface {
	Submit(ctx context.Context, entry LeaderboardEntry) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Best(ctx context.Context, playerID string) (*LeaderboardEntry, error)
	Rank(ctx context.Context, playerID string) (int, error)
}

// CheatLog abstracts the opaque cheater-log persistence port.
type CheatLog interface {
	Record(ctx context.Context, rec CheatRecord) error
	Top(ctx context.Context, limit int) ([]CheatRecord, error)
}

// EdgeCaseLog is the append-only store the Edge-Case Arbiter writes to.
type EdgeCaseLog interface {
	Append(ctx context.Context, ec EdgeCase) error
	Recent(ctx context.Context, limit int) ([]EdgeCase, error)
	CountSince(ctx context.Context, since int64) (int, error)
	Total(ctx context.Context) (int, error)
}

// TrainingStore persists labeled samples for the Training Worker.
type TrainingStore interface {
	Append(ctx context.Context, s TrainingSample) error
	All(ctx context.Context) ([]TrainingSample, error)
	Count(ctx context.Context) (int, error)
}

// ModelRegistry persists and serves ModelVersion records.
type ModelRegistry interface {
	Save(ctx context.Context, mv ModelVersion) error
	Activate(ctx context.Context, id string) error
	Active(ctx context.Context) (*ModelVersion, error)
	List(ctx context.Context) ([]ModelVersion, error)
}
