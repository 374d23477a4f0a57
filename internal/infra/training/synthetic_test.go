package training

import (
	"testing"

	"github.com/snakeguard/snakeguard/internal/domain"
)

func TestGenerateSynthetic_IsReproducibleForSameSeed(t *testing.T) {
	a := GenerateSynthetic(ArchetypeBot, 5, 42)
	b := GenerateSynthetic(ArchetypeBot, 5, 42)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Features != b[i].Features {
			t.Fatalf("sample %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateSynthetic_DifferentSeedsDiffer(t *testing.T) {
	a := GenerateSynthetic(ArchetypeBot, 5, 1)
	b := GenerateSynthetic(ArchetypeBot, 5, 2)
	same := true
	for i := range a {
		if a[i].Features != b[i].Features {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different samples")
	}
}

func TestGenerateSynthetic_CheatArchetypesLabelCheat(t *testing.T) {
	for _, a := range CheatArchetypes {
		samples := GenerateSynthetic(a, 3, 7)
		for _, s := range samples {
			if s.Label != domain.LabelCheat {
				t.Fatalf("archetype %v: expected LabelCheat, got %v", a, s.Label)
			}
			if s.Source != domain.SourceSynthetic {
				t.Fatalf("archetype %v: expected SourceSynthetic, got %v", a, s.Source)
			}
		}
	}
}

func TestGenerateSynthetic_SkillArchetypesLabelLegit(t *testing.T) {
	for _, a := range SkillArchetypes {
		samples := GenerateSynthetic(a, 3, 7)
		for _, s := range samples {
			if s.Label != domain.LabelLegit {
				t.Fatalf("archetype %v: expected LabelLegit, got %v", a, s.Label)
			}
		}
	}
}

func TestGenerateSynthetic_BotArchetypeExceedsMovesPerFoodThreshold(t *testing.T) {
	samples := GenerateSynthetic(ArchetypeBot, 10, 9)
	movesPerFoodIdx := -1
	for i, name := range domain.FeatureNames {
		if name == "moves_per_food" {
			movesPerFoodIdx = i
		}
	}
	if movesPerFoodIdx < 0 {
		t.Fatal("moves_per_food not found in FeatureNames")
	}
	for _, s := range samples {
		if s.Features[movesPerFoodIdx] <= 4.0 {
			t.Fatalf("expected bot archetype moves_per_food > 4.0, got %v", s.Features[movesPerFoodIdx])
		}
	}
}

func TestGenerateSynthetic_PauseAbuseArchetypeHasPauseGaps(t *testing.T) {
	samples := GenerateSynthetic(ArchetypePauseAbuse, 10, 11)
	pauseGapIdx := -1
	for i, name := range domain.FeatureNames {
		if name == "pause_gap_count" {
			pauseGapIdx = i
		}
	}
	if pauseGapIdx < 0 {
		t.Fatal("pause_gap_count not found in FeatureNames")
	}
	for _, s := range samples {
		if s.Features[pauseGapIdx] == 0 {
			t.Fatalf("expected pause_abuse archetype to register at least one pause gap")
		}
	}
}

func TestGenerateSynthetic_ExpertFasterThanBeginner(t *testing.T) {
	beginner := GenerateSynthetic(ArchetypeBeginner, 10, 20)
	expert := GenerateSynthetic(ArchetypeExpert, 10, 20)

	avgIdx := -1
	for i, name := range domain.FeatureNames {
		if name == "avg_time_between_moves" {
			avgIdx = i
		}
	}
	if avgIdx < 0 {
		t.Fatal("avg_time_between_moves not found in FeatureNames")
	}

	var beginnerAvg, expertAvg float64
	for _, s := range beginner {
		beginnerAvg += s.Features[avgIdx]
	}
	for _, s := range expert {
		expertAvg += s.Features[avgIdx]
	}
	beginnerAvg /= float64(len(beginner))
	expertAvg /= float64(len(expert))

	if expertAvg >= beginnerAvg {
		t.Fatalf("expected expert archetype to move faster on average than beginner, expert=%v beginner=%v", expertAvg, beginnerAvg)
	}
}
