package replay

import (
	"strings"
	"testing"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// straightRunMoves returns an empty move log; Run judges such a submission
// against the initial state without simulating any frame.
func straightRunMoves() []domain.Move {
	return nil
}

func TestRun_EmptyMovesZeroScore(t *testing.T) {
	// An empty move log must replay to score 0 and be accepted when the
	// submission claims score 0, foodEaten 0, over a short duration.
	sub := domain.Submission{
		Seed: 42,
		Moves: straightRunMoves(),
		TotalFrames: 2,
		Score: 0,
		FoodEaten: 0,
		GameDuration: float64(12*InitialSpeedMs) / 1000.0,
	}
	res := Run(sub)
	if !res.Valid {
		t.Fatalf("expected valid replay, got invalid: %s", res.FailReason)
	}
	if res.ComputedScore != 0 || res.ComputedFood != 0 {
		t.Fatalf("got score=%d food=%d, want 0,0", res.ComputedScore, res.ComputedFood)
	}
}

func TestRun_ScoreToleranceWithinTwoFood(t *testing.T) {
	// When foodEaten <= 2, a score within +-20 of the replayed score
	// must still be accepted.
	sub := domain.Submission{
		Seed: 7,
		TotalFrames: 3,
		Score: 20, // replay computes 0 for an empty move log
		FoodEaten: 0,
		GameDuration: float64(3*InitialSpeedMs) / 1000.0,
	}
	res := Run(sub)
	if !res.Valid {
		t.Fatalf("expected score within tolerance to be accepted: %s", res.FailReason)
	}
}

func TestRun_ScoreToleranceExceeded(t *testing.T) {
	sub := domain.Submission{
		Seed: 7,
		TotalFrames: 3,
		Score: 1000, // far outside +-20 of the replayed score of 0
		FoodEaten: 0,
		GameDuration: float64(3*InitialSpeedMs) / 1000.0,
	}
	res := Run(sub)
	if res.Valid {
		t.Fatal("expected score far outside tolerance to be rejected")
	}
}

func TestRun_FoodEatenMismatchRejected(t *testing.T) {
	sub := domain.Submission{
		Seed: 7,
		TotalFrames: 3,
		Score: 0,
		FoodEaten: 5,
		GameDuration: float64(3*InitialSpeedMs) / 1000.0,
	}
	res := Run(sub)
	if res.Valid {
		t.Fatal("expected foodEaten mismatch to be rejected")
	}
}

func TestRun_TotalFramesCapAt10000(t *testing.T) {
	// An absurd totalFrames must still terminate the simulation within
	// MaxFrames simulated frames rather than hang or overflow the frame log.
	// The move log circles the snake around a 2x2 square so it never dies.
	turns := []domain.Direction{domain.Down, domain.Left, domain.Up, domain.Right}
	moves := make([]domain.Move, 0, MaxFrames)
	for f := 1; f <= MaxFrames; f++ {
		moves = append(moves, domain.Move{Direction: turns[(f-1)%len(turns)], Frame: uint64(f)})
	}
	sub := domain.Submission{
		Seed: 1,
		Moves: moves,
		TotalFrames: 50_000,
		Score: 0,
		FoodEaten: 0,
		GameDuration: 1500,
	}
	res := Run(sub)
	last := res.Frames[len(res.Frames)-1]
	if last.Frame != MaxFrames {
		t.Fatalf("simulation stopped at frame %d (%s), want the MaxFrames cap %d", last.Frame, res.FailReason, MaxFrames)
	}
}

func TestRun_WallCollisionInvalidatesReplay(t *testing.T) {
	// S3: a move log that drives the snake straight off the right edge of
	// the board must fail with a wall-collision reason, regardless of what
	// the client claimed.
	center := Grid / 2
	framesToWall := Grid - center + 2
	// No turns needed: initial heading is already Right, so a single
	// Right move keeps the snake walking straight into the east wall.
	moves := []domain.Move{{Direction: domain.Right, Frame: 1}}
	sub := domain.Submission{
		Seed: 42,
		Moves: moves,
		TotalFrames: uint64(framesToWall),
		Score: 9999,
		FoodEaten: 0,
		GameDuration: 100,
	}
	res := Run(sub)
	if res.Valid {
		t.Fatal("expected wall collision to invalidate the replay")
	}
	if !strings.HasPrefix(res.FailReason, "wall collision") {
		t.Fatalf("expected a wall-collision fail reason, got %q", res.FailReason)
	}
}

func TestRun_InverseDirectionRejectedButConsumed(t *testing.T) {
	// A move that reverses the current heading must be ignored (it would
	// be an instant self-collision), but still consumed from the log so a
	// later legal turn on the same or a later frame is not shifted.
	sub := domain.Submission{
		Seed: 1,
		Moves: []domain.Move{
			{Direction: domain.Left, Frame: 1, TimeMs: 100}, // inverse of Right, ignored
			{Direction: domain.Up, Frame: 2, TimeMs: 200}, // legal turn
		},
		TotalFrames: 4,
		Score: 0,
		FoodEaten: 0,
		GameDuration: float64(4*InitialSpeedMs) / 1000.0,
	}
	res := Run(sub)
	if !res.Valid {
		t.Fatalf("expected valid replay: %s", res.FailReason)
	}
}

func TestRun_DurationToleranceFloor(t *testing.T) {
	// The duration tolerance floors at 10 seconds even for very short games.
	sub := domain.Submission{
		Seed: 3,
		TotalFrames: 2,
		Score: 0,
		FoodEaten: 0,
		GameDuration: float64(2*InitialSpeedMs)/1000.0 + 9, // within floor(10s) tolerance
	}
	res := Run(sub)
	if !res.Valid {
		t.Fatalf("expected duration within floor tolerance to be accepted: %s", res.FailReason)
	}
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	// Identical inputs always produce an identical ReplayResult.
	sub := domain.Submission{
		Seed: 42,
		Moves: []domain.Move{
			{Direction: domain.Down, Frame: 1, TimeMs: 150},
			{Direction: domain.Left, Frame: 5, TimeMs: 700},
		},
		TotalFrames: 10,
		Score: 0,
		FoodEaten: 0,
		GameDuration: float64(10*InitialSpeedMs) / 1000.0,
	}
	a := Run(sub)
	b := Run(sub)
	if a.Valid != b.Valid || a.ComputedScore != b.ComputedScore || a.ComputedFood != b.ComputedFood || a.SimulatedDuration != b.SimulatedDuration {
		t.Fatalf("replay not deterministic: %+v != %+v", a, b)
	}
}

func TestScoreTolerance(t *testing.T) {
	cases := []struct {
		foodEaten int
		want int
	}{
		{0, 20},
		{2, 20},
		{3, 0},
		{100, 0},
	}
	for _, c := range cases {
		if got := ScoreTolerance(c.foodEaten); got != c.want {
			t.Errorf("ScoreTolerance(%d) = %d, want %d", c.foodEaten, got, c.want)
		}
	}
}

func TestDurationTolerance(t *testing.T) {
	if got := DurationTolerance(5); got != 10 {
		t.Errorf("DurationTolerance(5) = %v, want 10 (floor)", got)
	}
	if got := DurationTolerance(100); got != 20 {
		t.Errorf("DurationTolerance(100) = %v, want 20", got)
	}
}
