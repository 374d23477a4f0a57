// Package replay implements the deterministic replay engine.
//
// Given a seed and a move log, it re-executes the full game frame by frame
// and verifies the submitted score, food count, and duration to
// frame-level precision. The engine is pure: the same submission always
// produces the same ReplayResult. It is
// grounded on the simulation loop shape of a classic snake environment
// (collision checks, head/tail bookkeeping, fruit respawn) adapted to the
// submission-verification domain instead of a training-environment step
// function.
package replay

import (
	"fmt"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/rng"
)

// Simulation constants.
const (
	Grid = rng.Grid
	InitialSpeedMs = 150
	SpeedIncreaseMs = 3
	MinSpeedMs = 50
	MaxFoodEaten = 1000 // defensive bound against a runaway simulation
	MaxFrames = 10_000
	FrameLogHead = 5 // frames kept at the start of a failed replay's diagnostic log
	FrameLogTail = 5 // frames kept at the end
)

// point is a grid cell; aliased to rng.Point so food placement and snake
// bookkeeping share one coordinate type.
type point = rng.Point

// step moves p one cell in d.
func step(p point, d domain.Direction) point {
	switch d {
	case domain.Up:
		return point{X: p.X, Y: p.Y - 1}
	case domain.Right:
		return point{X: p.X + 1, Y: p.Y}
	case domain.Down:
		return point{X: p.X, Y: p.Y + 1}
	case domain.Left:
		return point{X: p.X - 1, Y: p.Y}
	}
	return p
}

func inBounds(p point) bool {
	return p.X >= 0 && p.X < Grid && p.Y >= 0 && p.Y < Grid
}

// DurationTolerance returns max(10, submittedDuration*0.20) seconds.
func DurationTolerance(submittedDuration float64) float64 {
	t := submittedDuration * 0.20
	if t < 10 {
		return 10
	}
	return t
}

// ScoreTolerance returns the permitted score slack: 20 when foodEaten <= 2,
// else 0.
func ScoreTolerance(foodEaten int) int {
	if foodEaten <= 2 {
		return 20
	}
	return 0
}

// Run re-simulates a submission from (seed, moves) and checks it against
// the submitted score, foodEaten, and duration. It never mutates its
// input and always terminates within MaxFrames simulated frames.
func Run(sub domain.Submission) domain.ReplayResult {
	snake, dir := initialSnake()
	occupied := occupancy(snake)

	score := 0
	foodEaten := 0
	currentSpeed := InitialSpeedMs
	simulatedClockMs := int64(0)

	if len(sub.Moves) == 0 {
		return runWithoutMoves(sub)
	}

	food := rng.NextFood(sub.Seed, foodEaten, occupied)

	var frames []domain.FrameSnapshot
	var foodEvents []domain.FoodEvent

	recordFrame := func(frame uint64) {
		frames = append(frames, domain.FrameSnapshot{
			Frame: frame,
			HeadX: snake[0].X,
			HeadY: snake[0].Y,
			Score: score,
			Food: foodEaten,
		})
	}
	recordFrame(0)

	moveIdx := 0
	limit := sub.TotalFrames + 10
	if limit > MaxFrames {
		limit = MaxFrames
	}

	failReason := ""

	for frame := uint64(1); frame <= limit; frame++ {
		simulatedClockMs += int64(currentSpeed)

		for moveIdx < len(sub.Moves) && sub.Moves[moveIdx].Frame == frame {
			m := sub.Moves[moveIdx]
			if m.Direction.Valid() && m.Direction != dir.Opposite() {
				dir = m.Direction
			}
			moveIdx++
		}

		head := snake[0]
		newHead := step(head, dir)

		if !inBounds(newHead) {
			failReason = fmt.Sprintf("wall collision at frame %d (%d,%d)", frame, newHead.X, newHead.Y)
			break
		}
		if bodyHit(snake, newHead) {
			failReason = fmt.Sprintf("self collision at frame %d (%d,%d)", frame, newHead.X, newHead.Y)
			break
		}

		snake = append([]point{newHead}, snake...)
		occupied[newHead] = true

		if newHead == food {
			score += 10
			foodEaten++
			foodEvents = append(foodEvents, domain.FoodEvent{Frame: frame, Score: score, Food: foodEaten})
			if foodEaten > MaxFoodEaten {
				failReason = fmt.Sprintf("foodEaten exceeded defensive bound of %d", MaxFoodEaten)
				break
			}
			food = rng.NextFood(sub.Seed, foodEaten, occupied)
			currentSpeed -= SpeedIncreaseMs
			if currentSpeed < MinSpeedMs {
				currentSpeed = MinSpeedMs
			}
		} else {
			tail := snake[len(snake)-1]
			snake = snake[:len(snake)-1]
			delete(occupied, tail)
		}

		recordFrame(frame)
	}

	result := domain.ReplayResult{
		ComputedScore: score,
		ComputedFood: foodEaten,
		SimulatedDuration: float64(simulatedClockMs) / 1000.0,
		Frames: capFrames(frames),
		FoodEvents: foodEvents,
	}

	if failReason != "" {
		result.Valid = false
		result.FailReason = failReason
		return result
	}

	scoreTol := ScoreTolerance(sub.FoodEaten)
	scoreDiff := sub.Score - score
	if scoreDiff < 0 {
		scoreDiff = -scoreDiff
	}
	if scoreDiff > scoreTol {
		result.FailReason = fmt.Sprintf("score mismatch: replay calculated %d, client sent %d", score, sub.Score)
		return result
	}

	if foodEaten != sub.FoodEaten {
		result.FailReason = fmt.Sprintf("foodEaten mismatch: replay calculated %d, client sent %d", foodEaten, sub.FoodEaten)
		return result
	}

	durTol := DurationTolerance(sub.GameDuration)
	durDiff := result.SimulatedDuration - sub.GameDuration
	if durDiff < 0 {
		durDiff = -durDiff
	}
	if durDiff > durTol {
		result.FailReason = fmt.Sprintf("duration mismatch: replay simulated %.1fs, client sent %.1fs (tolerance %.1fs)", result.SimulatedDuration, sub.GameDuration, durTol)
		return result
	}

	result.Valid = true
	return result
}

// runWithoutMoves handles the empty-move-log boundary case: a submission with no move
// log at all never takes a simulated step, so it is judged directly
// against the initial state rather than by running the frame loop.
func runWithoutMoves(sub domain.Submission) domain.ReplayResult {
	result := domain.ReplayResult{ComputedScore: 0, ComputedFood: 0, SimulatedDuration: 0}

	if sub.FoodEaten != 0 {
		result.FailReason = fmt.Sprintf("foodEaten mismatch: replay calculated 0, client sent %d", sub.FoodEaten)
		return result
	}

	scoreDiff := sub.Score
	if scoreDiff < 0 {
		scoreDiff = -scoreDiff
	}
	if scoreDiff > ScoreTolerance(sub.FoodEaten) {
		result.FailReason = fmt.Sprintf("score mismatch: replay calculated 0, client sent %d", sub.Score)
		return result
	}

	if sub.GameDuration > DurationTolerance(sub.GameDuration) {
		result.FailReason = fmt.Sprintf("duration mismatch: replay simulated 0.0s, client sent %.1fs", sub.GameDuration)
		return result
	}

	result.Valid = true
	return result
}

// initialSnake returns the starting 3-cell snake, head at the center
// column, moving right.
func initialSnake() ([]point, domain.Direction) {
	center := Grid / 2
	snake := []point{
		{X: center, Y: center},
		{X: center - 1, Y: center},
		{X: center - 2, Y: center},
	}
	return snake, domain.Right
}

func occupancy(snake []point) map[point]bool {
	m := make(map[point]bool, len(snake))
	for _, p := range snake {
		m[p] = true
	}
	return m
}

func bodyHit(snake []point, p point) bool {
	for _, s := range snake {
		if s == p {
			return true
		}
	}
	return false
}

// capFrames trims the frame log to the first FrameLogHead and last
// FrameLogTail entries, so a diagnostic dump stays small regardless of how
// long the replay ran.
func capFrames(frames []domain.FrameSnapshot) []domain.FrameSnapshot {
	if len(frames) <= FrameLogHead+FrameLogTail {
		return frames
	}
	out := make([]domain.FrameSnapshot, 0, FrameLogHead+FrameLogTail)
	out = append(out, frames[:FrameLogHead]...)
	out = append(out, frames[len(frames)-FrameLogTail:]...)
	return out
}
