package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// leaderboardMigrations returns the hall-of-fame schema.
func leaderboardMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS leaderboard (
			player_id TEXT PRIMARY KEY,
			score INTEGER NOT NULL,
			food_eaten INTEGER NOT NULL,
			recorded_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC)`,
	}
}

// Leaderboard implements domain.Leaderboard on top of DB.
type Leaderboard struct {
	db *DB
}

// NewLeaderboard returns a domain.Leaderboard backed by db.
func NewLeaderboard(db *DB) *Leaderboard {
	return &Leaderboard{db: db}
}

var _ domain.Leaderboard = (*Leaderboard)(nil)

// Submit records entry, keeping only a player's best score (deduping:
// Accepted submissions append to the leaderboard, and a player's
// standing should reflect their personal best, not their latest run).
func (l *Leaderboard) Submit(ctx context.Context, entry domain.LeaderboardEntry) error {
	_, err := l.db.db.ExecContext(ctx, `
		INSERT INTO leaderboard (player_id, score, food_eaten, recorded_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(player_id) DO UPDATE SET
			score = excluded.score,
			food_eaten = excluded.food_eaten,
			recorded_at = excluded.recorded_at
		WHERE excluded.score > leaderboard.score
	`, entry.PlayerID, entry.Score, entry.FoodEaten)
	return err
}

// Top returns the highest-scoring entries, ranked.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := l.db.db.QueryContext(ctx, `
		SELECT player_id, score, food_eaten, recorded_at
		FROM leaderboard ORDER BY score DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	rank := 0
	for rows.Next() {
		rank++
		var e domain.LeaderboardEntry
		var recordedAt string
		if err := rows.Scan(&e.PlayerID, &e.Score, &e.FoodEaten, &recordedAt); err != nil {
			return nil, err
		}
		e.Rank = rank
		e.RecordedAt, _ = time.Parse("2006-01-02 15:04:05", recordedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Best returns a player's best recorded entry, if any.
func (l *Leaderboard) Best(ctx context.Context, playerID string) (*domain.LeaderboardEntry, error) {
	var e domain.LeaderboardEntry
	var recordedAt string
	err := l.db.db.QueryRowContext(ctx, `
		SELECT player_id, score, food_eaten, recorded_at
		FROM leaderboard WHERE player_id = ?
	`, playerID).Scan(&e.PlayerID, &e.Score, &e.FoodEaten, &recordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.RecordedAt, _ = time.Parse("2006-01-02 15:04:05", recordedAt)
	return &e, nil
}

// Rank returns a player's 1-indexed standing among all entries.
func (l *Leaderboard) Rank(ctx context.Context, playerID string) (int, error) {
	var rank int
	err := l.db.db.QueryRowContext(ctx, `
		SELECT COUNT(*) + 1 FROM leaderboard
		WHERE score > (SELECT score FROM leaderboard WHERE player_id = ?)
	`, playerID).Scan(&rank)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return rank, err
}
