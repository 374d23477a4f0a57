// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Direction & Move Types ─────────────────────────────────────────────────

// Direction is a snake heading.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Valid reports whether d is one of the four known headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Opposite returns the heading directly behind d.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Move is one committed direction change, recorded on the frame it takes effect.
type Move struct {
	Direction Direction
	Frame uint64
	TimeMs int64 // milliseconds since game start
}

// Heartbeat is a periodic client self-report corroborating wall-clock vs.
// monotonic-clock progress.
type Heartbeat struct {
	TimeMs int64 // wall-clock delta, ms
	PerfMs int64 // high-resolution monotonic delta, ms
	Frame uint64
	SpeedMs int64 // current simulation step, ms
	Score int // valid only when HasScore
	HasScore bool
}

// ─── Session ────────────────────────────────────────────────────────────

// GameSession is a transient, in-flight game. At most one lives per player.
type GameSession struct {
	PlayerID string
	Seed uint32
	StartTime time.Time
}

// ─── Submission ───────────────────────────────────────────────────────────

// Submission is the atomic input unit of the anti-cheat pipeline.
type Submission struct {
	PlayerID string
	Score int
	SpeedLevel int
	FoodEaten int
	GameDuration float64 // seconds
	Seed uint32
	Moves []Move
	Heartbeats []Heartbeat
	TotalFrames uint64
	Fingerprint string
}

// ─── Cheat kinds ────────────────────────────────────────────────────────

// CheatKind enumerates the fixed set of reasons a submission can be rejected
// as a cheat.
type CheatKind string

const (
	CheatNone CheatKind = ""
	CheatScoreMismatch CheatKind = "score_mismatch"
	CheatSpeedHack CheatKind = "speed_hack"
	CheatInvalidSession CheatKind = "invalid_session"
	CheatPauseAbuse CheatKind = "pause_abuse"
	CheatBotUsage CheatKind = "bot_usage"
	CheatTimingManipulation CheatKind = "timing_manipulation"
	CheatReplayFail CheatKind = "replay_fail"
	CheatMissingMoves CheatKind = "missing_moves"
)

// RuleVerdict is the outcome of running the rule detectors and the
// replay engine against a Submission.
type RuleVerdict struct {
	Cheat bool
	Kind CheatKind
	Reason string
	Replay *ReplayResult // populated only once the replay engine has run
}

// ─── Replay ─────────────────────────────────────────────────────────────

// FoodEvent records one food pickup during a replay, for diagnostics.
type FoodEvent struct {
	Frame uint64
	Score int
	Food int
}

// FrameSnapshot captures a single simulated frame for the capped diagnostic
// log attached to a failed replay.
type FrameSnapshot struct {
	Frame uint64
	HeadX int
	HeadY int
	Score int
	Food int
}

// ReplayResult is the structured verdict of re-simulating a submission.
type ReplayResult struct {
	Valid bool
	ComputedScore int
	ComputedFood int
	SimulatedDuration float64 // seconds
	FailReason string
	Frames []FrameSnapshot // capped first/last few frames
	FoodEvents []FoodEvent // all food pickups
}

// ─── Feature vector ─────────────────────────────────────────────────────

// FeatureNames is the fixed, ordered list of the 12 behavioral features.
var FeatureNames = [12]string{
	"avg_time_between_moves",
	"move_time_variance",
	"moves_per_food",
	"direction_entropy",
	"heartbeat_consistency",
	"score_rate",
	"frame_timing_deviation",
	"pause_gap_count",
	"speed_progression",
	"movement_burst_rate",
	"performance_time_drift",
	"avg_speed_per_food",
}

// FeatureVector is the ordered tuple of 12 behavioral scalars.
type FeatureVector [12]float64

// TimeSeriesStep is one entry of the optional hybrid-model time series
// branch: the first 50 moves mapped to (direction/3, Δtime/1000, frame/1000).
type TimeSeriesStep [3]float64

// ─── Edge cases ──────────────────────────────────────────────────────────

// EdgeType classifies how the rule verdict and the ML probability disagreed.
type EdgeType string

const (
	EdgeRulesPositiveMLNegative EdgeType = "rules_positive_ml_negative"
	EdgeRulesNegativeMLPositive EdgeType = "rules_negative_ml_positive"
	EdgeMLUncertainRulesPositive EdgeType = "ml_uncertain_rules_positive"
	EdgeMLUncertainRulesNegative EdgeType = "ml_uncertain_rules_negative"
)

// EdgeCase is a persisted disagreement (or uncertainty) between the rule
// engine and the ML detector.
type EdgeCase struct {
	ID string
	PlayerID string
	Score int
	RuleCheat bool
	MLProbability float64
	EdgeType EdgeType
	Features FeatureVector
	ShouldFlag bool
	Timestamp time.Time
}

// ─── Training samples & model versions ──────────────────────────────────

// SampleLabel is the ground-truth label attached to a training sample.
type SampleLabel string

const (
	LabelCheat SampleLabel = "cheat"
	LabelLegit SampleLabel = "legit"
)

// SampleSource records whether a training sample came from a live
// submission or from the synthetic data generator.
type SampleSource string

const (
	SourceRule SampleSource = "rule"
	SourceSynthetic SampleSource = "synthetic"
)

// TrainingSample is one labeled example fed to the training worker.
type TrainingSample struct {
	ID string
	PlayerID string
	Features FeatureVector
	Label SampleLabel
	Source SampleSource
	CreatedAt time.Time
}

// ModelMetrics captures the evaluation results of one training run.
type ModelMetrics struct {
	Accuracy float64
	Precision float64
	Recall float64
	F1 float64
	TrainSamples int
	ValidateSamples int
	Epochs int
}

// NormStats holds the per-feature z-score normalization statistics stored
// alongside a model.
type NormStats struct {
	Means [12]float64
	Stds [12]float64
}

// ModelVersion describes one trained model: weights, normalization
// statistics, and evaluation metrics. Versions are ordered by CreatedAt;
// exactly one is Active.
type ModelVersion struct {
	ID string
	CreatedAt time.Time
	Active bool
	Weights []float32
	Norm NormStats
	Metrics ModelMetrics
	Hidden1 int
	Hidden2 int
}

// ─── Leaderboard ─────────────────────────────────────────────────────────

// LeaderboardEntry is one row of the hall of fame / hall of shame.
type LeaderboardEntry struct {
	PlayerID string
	Score int
	FoodEaten int
	Rank int
	RecordedAt time.Time
}

// CheatRecord is a persisted cheat-detection event backing hallofshame.
type CheatRecord struct {
	ID string
	PlayerID string
	Score int
	Kind CheatKind
	Reason string
	Seed uint32
	SubmittedAt time.Time
}
