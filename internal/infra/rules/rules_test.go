package rules

import (
	"context"
	"testing"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

func noSession(context.Context, string) (domain.GameSession, bool) {
	return domain.GameSession{}, false
}

func matchingSession(seed uint32) SessionLookup {
	return func(context.Context, string) (domain.GameSession, bool) {
		return domain.GameSession{Seed: seed, StartTime: time.Now()}, true
	}
}

func baseSubmission() domain.Submission {
	return domain.Submission{
		PlayerID: "p1",
		Score: 0,
		SpeedLevel: 1,
		FoodEaten: 0,
		GameDuration: 5,
		Seed: 42,
		TotalFrames: 2,
	}
}

func TestEvaluate_LegitimateSubmissionPasses(t *testing.T) {
	sub := baseSubmission()
	v := Evaluate(context.Background(), sub, matchingSession(42))
	if v.Cheat {
		t.Fatalf("expected legit verdict, got cheat kind %q: %s", v.Kind, v.Reason)
	}
}

func TestEvaluate_MissingMovesFiresFirst(t *testing.T) {
	sub := baseSubmission()
	sub.FoodEaten = 3
	sub.Score = 30
	v := Evaluate(context.Background(), sub, matchingSession(42))
	if !v.Cheat || v.Kind != domain.CheatMissingMoves {
		t.Fatalf("expected missing_moves, got %+v", v)
	}
}

func TestScoreVsFood_Mismatch(t *testing.T) {
	sub := baseSubmission()
	sub.FoodEaten = 5
	sub.Score = 9999
	v := scoreVsFood(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatScoreMismatch {
		t.Fatalf("expected score_mismatch, got %+v", v)
	}
}

func TestScoreVsFood_ToleratesLowFoodSlack(t *testing.T) {
	sub := baseSubmission()
	sub.FoodEaten = 1
	sub.Score = 25 // within +-20 of foodEaten*10=10
	v := scoreVsFood(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected low-food slack to tolerate this score, got %+v", v)
	}
}

func TestSpeedFloor_FiresOnImpossibleSpeed(t *testing.T) {
	sub := baseSubmission()
	sub.SpeedLevel = 20
	sub.GameDuration = 10
	v := speedFloor(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatSpeedHack {
		t.Fatalf("expected speed_hack, got %+v", v)
	}
}

func TestSpeedFloor_AllowsRealisticProgression(t *testing.T) {
	sub := baseSubmission()
	sub.SpeedLevel = 6
	sub.GameDuration = 9
	v := speedFloor(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected pass, got %+v", v)
	}
}

func TestSessionSeed_MissingSession(t *testing.T) {
	sub := baseSubmission()
	v := sessionSeed(noSession)(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatInvalidSession {
		t.Fatalf("expected invalid_session, got %+v", v)
	}
}

func TestSessionSeed_MismatchedSeed(t *testing.T) {
	sub := baseSubmission()
	sub.Seed = 99
	v := sessionSeed(matchingSession(42))(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatInvalidSession {
		t.Fatalf("expected invalid_session, got %+v", v)
	}
}

func TestPauseAbuse_FlagsLargeGap(t *testing.T) {
	sub := baseSubmission()
	sub.Moves = []domain.Move{
		{Direction: domain.Down, Frame: 1, TimeMs: 1000},
		{Direction: domain.Left, Frame: 2, TimeMs: 16000}, // 15s gap
	}
	v := pauseAbuse(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatPauseAbuse {
		t.Fatalf("expected pause_abuse, got %+v", v)
	}
}

func TestPauseAbuse_AllowsSmallGaps(t *testing.T) {
	sub := baseSubmission()
	sub.Moves = []domain.Move{
		{Direction: domain.Down, Frame: 1, TimeMs: 1000},
		{Direction: domain.Left, Frame: 2, TimeMs: 1500},
	}
	v := pauseAbuse(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected pass, got %+v", v)
	}
}

func TestBotHeuristic_FlagsExcessiveMovesPerFood(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 2000
	sub.FoodEaten = 10
	sub.Moves = make([]domain.Move, 50) // 5 moves/food > 4.0
	v := botHeuristic(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatBotUsage {
		t.Fatalf("expected bot_usage, got %+v", v)
	}
}

func TestBotHeuristic_SkippedBelowScoreThreshold(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 500
	sub.FoodEaten = 1
	sub.Moves = make([]domain.Move, 50)
	v := botHeuristic(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected pass below score threshold, got %+v", v)
	}
}

func TestHeartbeatConsistency_SkippedWithFewHeartbeats(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 500
	sub.Heartbeats = []domain.Heartbeat{{TimeMs: 1000, PerfMs: 1000, Frame: 1, SpeedMs: 150}}
	v := heartbeatConsistency(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected pass with < 2 heartbeats, got %+v", v)
	}
}

func TestHeartbeatConsistency_FlagsClockDivergence(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 500
	sub.Heartbeats = []domain.Heartbeat{
		{TimeMs: 0, PerfMs: 0, Frame: 0, SpeedMs: 150},
		{TimeMs: 10000, PerfMs: 1000, Frame: 67, SpeedMs: 150}, // wall vs perf diverge by 9s
	}
	v := heartbeatConsistency(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatTimingManipulation {
		t.Fatalf("expected timing_manipulation, got %+v", v)
	}
	if v.Reason != "wall-clock and monotonic-clock heartbeats diverge" {
		t.Fatalf("expected the clock-divergence check to fire, got reason %q", v.Reason)
	}
}

func TestHeartbeatConsistency_AllowsConsistentTiming(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 500
	sub.Heartbeats = []domain.Heartbeat{
		{TimeMs: 0, PerfMs: 0, Frame: 0, SpeedMs: 150},
		{TimeMs: 1500, PerfMs: 1500, Frame: 10, SpeedMs: 150},
		{TimeMs: 3000, PerfMs: 3000, Frame: 20, SpeedMs: 150},
	}
	v := heartbeatConsistency(context.Background(), sub)
	if v.Cheat {
		t.Fatalf("expected pass, got %+v", v)
	}
}

func TestReplayRule_FiresOnDivergence(t *testing.T) {
	sub := baseSubmission()
	sub.Score = 9999
	sub.TotalFrames = 20 // no moves: replay computes score 0, far from 9999
	v := replayRule(context.Background(), sub)
	if !v.Cheat || v.Kind != domain.CheatReplayFail {
		t.Fatalf("expected replay_fail, got %+v", v)
	}
	if v.Replay == nil {
		t.Fatal("expected the replay result to be attached to the verdict")
	}
}

func TestEvaluate_ShortCircuitsOnFirstMatch(t *testing.T) {
	// Both score_mismatch and missing_moves conditions could apply; missing
	// moves is checked first and must short-circuit score-vs-food.
	sub := baseSubmission()
	sub.FoodEaten = 5
	sub.Score = 12345
	v := Evaluate(context.Background(), sub, matchingSession(42))
	if v.Kind != domain.CheatMissingMoves {
		t.Fatalf("expected missing_moves to short-circuit, got %q", v.Kind)
	}
}
