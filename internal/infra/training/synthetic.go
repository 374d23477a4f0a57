// synthetic.go implements the synthetic data generator:
// four cheat archetypes and three skill archetypes, each emitting a full
// move/heartbeat sequence whose extracted features land in a known region
// of feature space, reproducible from a seed for test determinism. Kept
// as a standalone generator (no dependency on the trainer) per the
// design decision that it must be kept separate from the trainer itself.
package training

import (
	"math/rand"

	"github.com/snakeguard/snakeguard/internal/domain"
	"github.com/snakeguard/snakeguard/internal/infra/features"
)

// Archetype names the synthetic generator variants.
type Archetype string

const (
	ArchetypeSpeedHack Archetype = "speed_hack"
	ArchetypeBot Archetype = "bot"
	ArchetypePauseAbuse Archetype = "pause_abuse"
	ArchetypeTimingManipulation Archetype = "timing_manipulation"
	ArchetypeBeginner Archetype = "beginner"
	ArchetypeIntermediate Archetype = "intermediate"
	ArchetypeExpert Archetype = "expert"
)

// CheatArchetypes and SkillArchetypes are the fixed generator sets.
var (
	CheatArchetypes = []Archetype{ArchetypeSpeedHack, ArchetypeBot, ArchetypePauseAbuse, ArchetypeTimingManipulation}
	SkillArchetypes = []Archetype{ArchetypeBeginner, ArchetypeIntermediate, ArchetypeExpert}
)

func labelFor(a Archetype) domain.SampleLabel {
	for _, c := range CheatArchetypes {
		if c == a {
			return domain.LabelCheat
		}
	}
	return domain.LabelLegit
}

// GenerateSynthetic produces n reproducible labeled samples for archetype,
// seeded by seed so repeated calls with the same inputs always produce
// the same samples.
func GenerateSynthetic(archetype Archetype, n int, seed int64) []domain.TrainingSample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]domain.TrainingSample, 0, n)
	for i := 0; i < n; i++ {
		sub := generateSubmission(archetype, rng)
		samples = append(samples, domain.TrainingSample{
			Features: features.Extract(sub),
			Label: labelFor(archetype),
			Source: domain.SourceSynthetic,
		})
	}
	return samples
}

// generateSubmission synthesizes a full move/heartbeat sequence whose
// timing characteristics match the archetype's real-world signature.
func generateSubmission(archetype Archetype, rng *rand.Rand) domain.Submission {
	switch archetype {
	case ArchetypeSpeedHack:
		return speedHackSubmission(rng)
	case ArchetypeBot:
		return botSubmission(rng)
	case ArchetypePauseAbuse:
		return pauseAbuseSubmission(rng)
	case ArchetypeTimingManipulation:
		return timingManipulationSubmission(rng)
	case ArchetypeBeginner, ArchetypeIntermediate, ArchetypeExpert:
		p := skillParamsFor(archetype)
		return skillSubmission(rng, p.AvgIntervalMs, p.SpreadMs, p.FoodEaten)
	default:
		p := skillParamsFor(ArchetypeIntermediate)
		return skillSubmission(rng, p.AvgIntervalMs, p.SpreadMs, p.FoodEaten)
	}
}

func jitter(rng *rand.Rand, base, spread float64) int64 {
	return int64(base + (rng.Float64()*2-1)*spread)
}

func randomDirection(rng *rand.Rand) domain.Direction {
	return domain.Direction(rng.Intn(4))
}

// speedHackSubmission: unnaturally tight, near-constant move intervals
// far below human reaction time, pushing movement_burst_rate toward 1 and
// frame_timing_deviation toward 0.
func speedHackSubmission(rng *rand.Rand) domain.Submission {
	moveCount := 30 + rng.Intn(20)
	moves := make([]domain.Move, moveCount)
	var t int64
	for i := range moves {
		t += jitter(rng, 20, 5)
		moves[i] = domain.Move{Direction: randomDirection(rng), Frame: uint64(i), TimeMs: t}
	}
	food := moveCount / 8
	return domain.Submission{
		Score: food * 10,
		FoodEaten: food,
		GameDuration: float64(t) / 1000.0,
		Moves: moves,
	}
}

// botSubmission: a very high score reached with a moves-per-food ratio
// above the bot threshold and mechanically even spacing.
func botSubmission(rng *rand.Rand) domain.Submission {
	food := 60 + rng.Intn(40)
	moveCount := food * 5 // > 4.0 moves/food, the bot threshold
	moves := make([]domain.Move, moveCount)
	var t int64
	for i := range moves {
		t += jitter(rng, 120, 10)
		moves[i] = domain.Move{Direction: randomDirection(rng), Frame: uint64(i), TimeMs: t}
	}
	return domain.Submission{
		Score: food * 10,
		FoodEaten: food,
		GameDuration: float64(t) / 1000.0,
		Moves: moves,
	}
}

// pauseAbuseSubmission: a normal cadence interrupted by one or more
// multi-second gaps, lifting pause_gap_count and lowering
// heartbeat_consistency.
func pauseAbuseSubmission(rng *rand.Rand) domain.Submission {
	moveCount := 20 + rng.Intn(20)
	moves := make([]domain.Move, moveCount)
	var t int64
	pauseAt := moveCount / 2
	for i := range moves {
		if i == pauseAt {
			t += 12_000 + rng.Int63n(6_000)
		} else {
			t += jitter(rng, 180, 40)
		}
		moves[i] = domain.Move{Direction: randomDirection(rng), Frame: uint64(i), TimeMs: t}
	}
	heartbeats := make([]domain.Heartbeat, 6)
	var ht int64
	for i := range heartbeats {
		if i == 3 {
			ht += 11_000
		} else {
			ht += 1_000
		}
		heartbeats[i] = domain.Heartbeat{TimeMs: ht, PerfMs: ht, Frame: uint64(i * 10), SpeedMs: 150}
	}
	food := moveCount / 10
	return domain.Submission{
		Score: food * 10,
		FoodEaten: food,
		GameDuration: float64(t) / 1000.0,
		Moves: moves,
		Heartbeats: heartbeats,
	}
}

// timingManipulationSubmission: heartbeats whose wall-clock delta diverges
// from the monotonic delta, simulating a throttled or manipulated tab.
func timingManipulationSubmission(rng *rand.Rand) domain.Submission {
	moves := skillMoves(rng, 160, 30, 15)
	heartbeats := make([]domain.Heartbeat, 8)
	var wall, perf int64
	for i := range heartbeats {
		wall += 1_000
		perf += 1_000 + jitter(rng, 0, 300)
		if i == 4 {
			perf -= 6_000 // sudden monotonic-clock divergence
		}
		heartbeats[i] = domain.Heartbeat{TimeMs: wall, PerfMs: perf, Frame: uint64(i * 10), SpeedMs: 150}
	}
	return domain.Submission{
		Score: 150,
		FoodEaten: 15,
		GameDuration: 30,
		Moves: moves,
		Heartbeats: heartbeats,
	}
}

// skillSubmission models a legitimate player at a given pace: avgIntervalMs
// is the mean time between moves, spreadMs its human variance, and
// foodEaten the amount of food collected at that skill level.
func skillSubmission(rng *rand.Rand, avgIntervalMs, spreadMs float64, foodEaten int) domain.Submission {
	moves := skillMoves(rng, avgIntervalMs, spreadMs, foodEaten*6)
	var duration float64
	if len(moves) > 0 {
		duration = float64(moves[len(moves)-1].TimeMs) / 1000.0
	}
	heartbeats := make([]domain.Heartbeat, 5)
	var t int64
	for i := range heartbeats {
		t += 1_000
		heartbeats[i] = domain.Heartbeat{TimeMs: t, PerfMs: t, Frame: uint64(i * 10), SpeedMs: int64(avgIntervalMs)}
	}
	return domain.Submission{
		Score: foodEaten * 10,
		FoodEaten: foodEaten,
		GameDuration: duration,
		Moves: moves,
		Heartbeats: heartbeats,
	}
}

func skillMoves(rng *rand.Rand, avgIntervalMs, spreadMs float64, count int) []domain.Move {
	if count <= 0 {
		count = 1
	}
	moves := make([]domain.Move, count)
	var t int64
	for i := range moves {
		t += jitter(rng, avgIntervalMs, spreadMs)
		if t < 0 {
			t = 0
		}
		moves[i] = domain.Move{Direction: randomDirection(rng), Frame: uint64(i), TimeMs: t}
	}
	return moves
}
