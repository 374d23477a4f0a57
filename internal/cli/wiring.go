package cli

import (
	"fmt"

	"github.com/snakeguard/snakeguard/internal/config"
	"github.com/snakeguard/snakeguard/internal/infra/sqlite"
)

// stores bundles the sqlite-backed persistence ports every subcommand
// needs, so serve/train/migrate all open the database the same way.
type stores struct {
	db *sqlite.DB
	leaderboard *sqlite.Leaderboard
	cheatLog *sqlite.CheatLog
	edgeCases *sqlite.EdgeCaseLog
	samples *sqlite.TrainingStore
	registry *sqlite.ModelRegistry
}

func openStores(cfg config.Config) (*stores, error) {
	db, err := sqlite.NewDB(cfg.Persistence.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open persistence: %w", err)
	}
	return &stores{
		db: db,
		leaderboard: sqlite.NewLeaderboard(db),
		cheatLog: sqlite.NewCheatLog(db),
		edgeCases: sqlite.NewEdgeCaseLog(db),
		samples: sqlite.NewTrainingStore(db),
		registry: sqlite.NewModelRegistry(db),
	}, nil
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
