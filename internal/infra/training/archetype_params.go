package training

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkillParams tunes one skill archetype's synthetic move cadence: the mean
// and spread of the inter-move interval, and how much food a player at
// that skill level collects. Externalized as YAML so the skill curve can
// be retuned against real player data without a rebuild, the same way the
// pack's genetic-algorithm trainer keeps its hyperparameters in a YAML
// document instead of compiled-in constants.
type SkillParams struct {
	AvgIntervalMs float64 `yaml:"avg_interval_ms"`
	SpreadMs float64 `yaml:"spread_ms"`
	FoodEaten int `yaml:"food_eaten"`
}

// skillParamSet is the full archetype -> SkillParams table.
type skillParamSet map[Archetype]SkillParams

// defaultSkillParams mirrors the tuning values the synthetic generator
// shipped with before archetype parameters were made configurable.
func defaultSkillParams() skillParamSet {
	return skillParamSet{
		ArchetypeBeginner: {AvgIntervalMs: 250, SpreadMs: 80, FoodEaten: 8},
		ArchetypeIntermediate: {AvgIntervalMs: 160, SpreadMs: 40, FoodEaten: 20},
		ArchetypeExpert: {AvgIntervalMs: 90, SpreadMs: 15, FoodEaten: 45},
	}
}

var activeSkillParams = defaultSkillParams()

// LoadSkillParamsFile overrides the skill archetype table from a YAML
// document; archetypes absent from the file keep their default tuning.
// An empty path is a no-op, matching config.Load's "defaults only" path.
func LoadSkillParamsFile(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("training: read skill params %s: %w", path, err)
	}
	overrides := skillParamSet{}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("training: parse skill params %s: %w", path, err)
	}

	merged := defaultSkillParams()
	for archetype, params := range overrides {
		merged[archetype] = params
	}
	activeSkillParams = merged
	return nil
}

func skillParamsFor(a Archetype) SkillParams {
	if p, ok := activeSkillParams[a]; ok {
		return p
	}
	return defaultSkillParams()[ArchetypeIntermediate]
}
