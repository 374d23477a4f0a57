package sqlite

import (
	"context"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// cheatLogMigrations returns the hall-of-shame schema.
func cheatLogMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS cheat_records (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL,
			submitted_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cheat_player ON cheat_records(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cheat_score ON cheat_records(score DESC)`,
	}
}

// CheatLog implements domain.CheatLog on top of DB.
type CheatLog struct {
	db *DB
}

// NewCheatLog returns a domain.CheatLog backed by db.
func NewCheatLog(db *DB) *CheatLog {
	return &CheatLog{db: db}
}

var _ domain.CheatLog = (*CheatLog)(nil)

// Record persists one cheat detection event.
func (c *CheatLog) Record(ctx context.Context, rec domain.CheatRecord) error {
	_, err := c.db.db.ExecContext(ctx, `
		INSERT INTO cheat_records (id, player_id, score, kind, reason, seed, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.PlayerID, rec.Score, string(rec.Kind), rec.Reason, rec.Seed, rec.SubmittedAt.Format(time.RFC3339))
	return err
}

// Top returns the highest-scoring rejected submissions (the hall of shame).
func (c *CheatLog) Top(ctx context.Context, limit int) ([]domain.CheatRecord, error) {
	rows, err := c.db.db.QueryContext(ctx, `
		SELECT id, player_id, score, kind, reason, seed, submitted_at
		FROM cheat_records ORDER BY score DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CheatRecord
	for rows.Next() {
		var r domain.CheatRecord
		var kind, submittedAt string
		if err := rows.Scan(&r.ID, &r.PlayerID, &r.Score, &kind, &r.Reason, &r.Seed, &submittedAt); err != nil {
			return nil, err
		}
		r.Kind = domain.CheatKind(kind)
		r.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
