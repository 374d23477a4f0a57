// Package config defines the TOML-configurable knobs for every tunable
// named below: listen address, game/replay constants, rule thresholds,
// ML thresholds, training/scheduler/rate-limit/session defaults, and
// persistence paths. Uses a nested-section config shape: one struct per
// [section], string durations like "5m" parsed at load time, a
// DefaultConfig() baseline merged with file overrides — durations as
// strings, a Default constructor, a Load that layers a file over it.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration document.
type Config struct {
	Server ServerConfig `toml:"server"`
	Game GameConfig `toml:"game"`
	Rules RulesConfig `toml:"rules"`
	ML MLConfig `toml:"ml"`
	Training TrainingConfig `toml:"training"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Session SessionConfig `toml:"session"`
	Persistence PersistenceConfig `toml:"persistence"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "5s", bounds handler cancellation
}

// GameConfig mirrors the replay engine's simulation constants.
type GameConfig struct {
	Grid int `toml:"grid"`
	InitialSpeedMs int `toml:"initial_speed_ms"`
	SpeedIncreaseMs int `toml:"speed_increase_ms"`
	MinSpeedMs int `toml:"min_speed_ms"`
}

// RulesConfig holds rule-detector threshold settings. The detectors in
// internal/infra/rules use their own compiled-in thresholds and do not
// read these fields.
type RulesConfig struct {
	PauseGapThresholdMs int `toml:"pause_gap_threshold_ms"`
	BotMovesPerFoodThreshold float64 `toml:"bot_moves_per_food_threshold"`
}

// MLConfig holds the shadow predictor's decision-band settings. The
// predictor and the edge-case arbiter use the compiled-in ml.HighThreshold
// and ml.LowThreshold and do not read these fields.
type MLConfig struct {
	HighThreshold float64 `toml:"high_threshold"`
	LowThreshold float64 `toml:"low_threshold"`
	MinScoreForPrediction int `toml:"min_score_for_prediction"`
}

// TrainingConfig controls the training worker.
type TrainingConfig struct {
	MinSamples int `toml:"min_samples"`
	Epochs int `toml:"epochs"`
	BatchSize int `toml:"batch_size"`
	ValidateSplit float64 `toml:"validate_split"`
	SyntheticCount int `toml:"synthetic_count"`
	Debounce string `toml:"debounce"`
	Seed int64 `toml:"seed"`
	SkillParamsFile string `toml:"skill_params_file"` // optional YAML override, see training.LoadSkillParamsFile
}

// SchedulerConfig controls the periodic training trigger.
type SchedulerConfig struct {
	Period string `toml:"period"`
	Threshold int `toml:"threshold"`
	Cooldown string `toml:"cooldown"`
}

// RateLimitConfig controls the per-player sliding window.
type RateLimitConfig struct {
	Limit int `toml:"limit"`
	Window string `toml:"window"`
	GCAfter string `toml:"gc_after"`
	SweepEvery string `toml:"sweep_every"`
}

// SessionConfig controls the session registry's TTL sweep.
type SessionConfig struct {
	TTL string `toml:"ttl"`
	SweepEvery string `toml:"sweep_every"`
}

// PersistenceConfig points at the SQLite database backing every
// persistence port.
type PersistenceConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
			RequestTimeout: "5s",
		},
		Game: GameConfig{
			Grid: 30,
			InitialSpeedMs: 150,
			SpeedIncreaseMs: 3,
			MinSpeedMs: 50,
		},
		Rules: RulesConfig{
			PauseGapThresholdMs: 10_000,
			BotMovesPerFoodThreshold: 4.0,
		},
		ML: MLConfig{
			HighThreshold: 0.7,
			LowThreshold: 0.3,
			MinScoreForPrediction: 50,
		},
		Training: TrainingConfig{
			MinSamples: 100,
			Epochs: 50,
			BatchSize: 32,
			ValidateSplit: 0.2,
			SyntheticCount: 40,
			Debounce: "5m",
			Seed: 1,
		},
		Scheduler: SchedulerConfig{
			Period: "30m",
			Threshold: 10,
			Cooldown: "2h",
		},
		RateLimit: RateLimitConfig{
			Limit: 10,
			Window: "60s",
			GCAfter: "1h",
			SweepEvery: "10m",
		},
		Session: SessionConfig{
			TTL: "30m",
			SweepEvery: "5m",
		},
		Persistence: PersistenceConfig{
			SQLitePath: "snakeguard.db",
		},
	}
}

// Load returns Default(), overridden field by field with whatever path
// specifies. An empty path returns the defaults unchanged; a path that
// cannot be read or decoded is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Duration parses a config duration string, falling back to def if s is
// empty or unparseable — configuration errors should not crash boot over
// one malformed field.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
