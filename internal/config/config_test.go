package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Game.Grid != 30 {
		t.Errorf("Game.Grid = %d, want 30", cfg.Game.Grid)
	}
	if cfg.ML.HighThreshold != 0.7 || cfg.ML.LowThreshold != 0.3 {
		t.Errorf("ML thresholds = %+v, want 0.7/0.3", cfg.ML)
	}
	if cfg.Training.MinSamples != 100 || cfg.Training.Epochs != 50 {
		t.Errorf("Training = %+v, want MinSamples=100 Epochs=50", cfg.Training)
	}
	if cfg.Scheduler.Threshold != 10 {
		t.Errorf("Scheduler.Threshold = %d, want 10", cfg.Scheduler.Threshold)
	}
	if cfg.RateLimit.Limit != 10 {
		t.Errorf("RateLimit.Limit = %d, want 10", cfg.RateLimit.Limit)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg != Default() {
		t.Error("Load(\"\") should return the default configuration unchanged")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snakeguard.toml")
	contents := `
[server]
listen_addr = ":9090"

[scheduler]
threshold = 25
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("Server.ListenAddr = %q, want:9090", cfg.Server.ListenAddr)
	}
	if cfg.Scheduler.Threshold != 25 {
		t.Errorf("Scheduler.Threshold = %d, want 25", cfg.Scheduler.Threshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Game.Grid != 30 {
		t.Errorf("Game.Grid = %d, want unchanged default of 30", cfg.Game.Grid)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("5m", time.Minute); got != 5*time.Minute {
		t.Errorf("Duration(5m) = %v, want 5m", got)
	}
	if got := Duration("", time.Minute); got != time.Minute {
		t.Errorf("Duration(\"\") = %v, want fallback of 1m", got)
	}
	if got := Duration("not-a-duration", time.Minute); got != time.Minute {
		t.Errorf("Duration(garbage) = %v, want fallback of 1m", got)
	}
}
