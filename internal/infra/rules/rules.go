// Package rules implements the fixed-order rule detectors and
// wires the replay engine in as the final rule. It is grounded on the
// ordered-rule-list-with-short-circuit style of a fraud rule detector: a
// ranked list of independent checks, the first match wins, and a check
// whose preconditions do not hold (no session lookup configured, score
// below a threshold, too few heartbeats) returns no verdict.
package rules

import (
	"context"
	"math"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/replay"
)

// SessionLookup resolves the live GameSession for a player, mirroring the
// session registry port consulted by rule (c).
type SessionLookup func(ctx context.Context, playerID string) (domain.GameSession, bool)

// Detector runs one rule detector in order (a) through (g) and reports a
// verdict; callers stop at the first Cheat verdict.
type Detector func(ctx context.Context, sub domain.Submission) domain.RuleVerdict

// Evaluate runs every detector in a fixed order and
// returns the first verdict that fires, short-circuiting the rest. If none
// fire, the submission is legitimate.
func Evaluate(ctx context.Context, sub domain.Submission, lookup SessionLookup) domain.RuleVerdict {
	detectors := []Detector{
		missingMoves,
		scoreVsFood,
		speedFloor,
		sessionSeed(lookup),
		pauseAbuse,
		botHeuristic,
		heartbeatConsistency,
		replayRule,
	}

	for _, d := range detectors {
		if v := d(ctx, sub); v.Cheat {
			return v
		}
	}
	return domain.RuleVerdict{Cheat: false, Kind: domain.CheatNone}
}

// missingMoves catches a submission that claims food was eaten with no move
// log to justify it — the replay engine cannot reach a verdict without a
// single step to execute. This precedes the other detectors because
// every later detector either reads sub.Moves or depends on the replay
// engine having something to run.
func missingMoves(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	if sub.FoodEaten > 0 && len(sub.Moves) == 0 {
		return domain.RuleVerdict{
			Cheat: true,
			Kind: domain.CheatMissingMoves,
			Reason: "foodEaten is nonzero but no moves were submitted",
		}
	}
	return domain.RuleVerdict{}
}

// (a) Score-vs-food: score must equal foodEaten*10, with slack only at very
// low food counts (mirrors the replay engine's own tolerance window).
func scoreVsFood(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	expected := sub.FoodEaten * 10
	diff := sub.Score - expected
	if diff < 0 {
		diff = -diff
	}
	tolerance := replay.ScoreTolerance(sub.FoodEaten)
	if diff > tolerance {
		return domain.RuleVerdict{
			Cheat: true,
			Kind: domain.CheatScoreMismatch,
			Reason: "score does not match foodEaten*10 within tolerance",
		}
	}
	return domain.RuleVerdict{}
}

// (b) Speed floor: a high speed level reached too quickly for the
// minimum realistic play time is a speed-hack.
func speedFloor(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	if sub.SpeedLevel > 5 && sub.GameDuration < float64(sub.SpeedLevel)*1.5 {
		return domain.RuleVerdict{
			Cheat: true,
			Kind: domain.CheatSpeedHack,
			Reason: "speed level reached faster than physically possible",
		}
	}
	return domain.RuleVerdict{}
}

// (c) Session seed: the submission must belong to a live, matching session.
func sessionSeed(lookup SessionLookup) Detector {
	return func(ctx context.Context, sub domain.Submission) domain.RuleVerdict {
		if lookup == nil {
			return domain.RuleVerdict{}
		}
		session, ok := lookup(ctx, sub.PlayerID)
		if !ok {
			return domain.RuleVerdict{
				Cheat: true,
				Kind: domain.CheatInvalidSession,
				Reason: "no live session for player",
			}
		}
		if session.Seed != sub.Seed {
			return domain.RuleVerdict{
				Cheat: true,
				Kind: domain.CheatInvalidSession,
				Reason: "submitted seed does not match the session's seed",
			}
		}
		return domain.RuleVerdict{}
	}
}

// pauseGapThresholdMs is the inter-move gap that marks a suspicious pause.
const pauseGapThresholdMs = 10_000

// (d) Pause-abuse: any inter-move gap over the threshold is suspicious.
func pauseAbuse(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	for i := 1; i < len(sub.Moves); i++ {
		gap := sub.Moves[i].TimeMs - sub.Moves[i-1].TimeMs
		if gap > pauseGapThresholdMs {
			return domain.RuleVerdict{
				Cheat: true,
				Kind: domain.CheatPauseAbuse,
				Reason: "inter-move gap exceeds the suspicious-pause threshold",
			}
		}
	}
	return domain.RuleVerdict{}
}

// botMovesPerFoodThreshold is the moves-per-food ratio above which a high
// score is flagged.
const botMovesPerFoodThreshold = 4.0

// (e) Bot heuristic: a high score reached with more moves per food item
// than the threshold.
func botHeuristic(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	if sub.Score <= 1000 {
		return domain.RuleVerdict{}
	}
	movesPerFood := float64(len(sub.Moves)) / math.Max(float64(sub.FoodEaten), 1)
	if movesPerFood > botMovesPerFoodThreshold {
		return domain.RuleVerdict{
			Cheat: true,
			Kind: domain.CheatBotUsage,
			Reason: "moves-per-food ratio is inconsistent with human play at this score",
		}
	}
	return domain.RuleVerdict{}
}

// (f) Heartbeat consistency: wall-clock vs. monotonic-clock and expected
// frame timing must agree within a fixed slack.
func heartbeatConsistency(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	if sub.Score < 100 || len(sub.Heartbeats) < 2 {
		return domain.RuleVerdict{}
	}

	hbs := sub.Heartbeats
	var speedSum int64
	for _, h := range hbs {
		speedSum += h.SpeedMs
	}
	avgSpeed := float64(speedSum) / float64(len(hbs))

	for i := 1; i < len(hbs); i++ {
		prev, cur := hbs[i-1], hbs[i]

		frameDelta := float64(cur.Frame - prev.Frame)
		expected := frameDelta * avgSpeed
		observed := float64(cur.TimeMs - prev.TimeMs)

		slack := math.Max(200, expected*0.30)
		if diff := math.Abs(observed - expected); diff > slack {
			return domain.RuleVerdict{
				Cheat: true,
				Kind: domain.CheatTimingManipulation,
				Reason: "heartbeat interval deviates from expected frame timing",
			}
		}

		wallDelta := cur.TimeMs - prev.TimeMs
		perfDelta := cur.PerfMs - prev.PerfMs
		drift := wallDelta - perfDelta
		if drift < 0 {
			drift = -drift
		}
		if drift > 5_000 {
			return domain.RuleVerdict{
				Cheat: true,
				Kind: domain.CheatTimingManipulation,
				Reason: "wall-clock and monotonic-clock heartbeats diverge",
			}
		}
	}

	if avgSpeed > 0 && (avgSpeed < 40 || avgSpeed > 200) {
		return domain.RuleVerdict{
			Cheat: true,
			Kind: domain.CheatTimingManipulation,
			Reason: "average milliseconds-per-frame is outside the realistic range",
		}
	}

	return domain.RuleVerdict{}
}

// (g) Replay: the final rule, re-simulating the whole game.
func replayRule(_ context.Context, sub domain.Submission) domain.RuleVerdict {
	result := replay.Run(sub)
	if result.Valid {
		return domain.RuleVerdict{Cheat: false, Kind: domain.CheatNone, Replay: &result}
	}
	return domain.RuleVerdict{
		Cheat: true,
		Kind: domain.CheatReplayFail,
		Reason: result.FailReason,
		Replay: &result,
	}
}
