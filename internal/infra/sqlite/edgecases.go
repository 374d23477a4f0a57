package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// edgeCaseMigrations returns the Edge-Case Arbiter's append-only log schema.
func edgeCaseMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS edge_cases (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			rule_cheat INTEGER NOT NULL,
			ml_probability REAL NOT NULL,
			edge_type TEXT NOT NULL,
			features_json TEXT NOT NULL,
			should_flag INTEGER NOT NULL,
			timestamp TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edge_timestamp ON edge_cases(timestamp)`,
	}
}

// EdgeCaseLog implements domain.EdgeCaseLog on top of DB.
type EdgeCaseLog struct {
	db *DB
}

// NewEdgeCaseLog returns a domain.EdgeCaseLog backed by db.
func NewEdgeCaseLog(db *DB) *EdgeCaseLog {
	return &EdgeCaseLog{db: db}
}

var _ domain.EdgeCaseLog = (*EdgeCaseLog)(nil)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Append persists one rule/ML disagreement or uncertainty.
func (e *EdgeCaseLog) Append(ctx context.Context, ec domain.EdgeCase) error {
	features, err := json.Marshal(ec.Features)
	if err != nil {
		return err
	}
	_, err = e.db.db.ExecContext(ctx, `
		INSERT INTO edge_cases (id, player_id, score, rule_cheat, ml_probability, edge_type, features_json, should_flag, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ec.ID, ec.PlayerID, ec.Score, boolToInt(ec.RuleCheat), ec.MLProbability, string(ec.EdgeType), string(features), boolToInt(ec.ShouldFlag), ec.Timestamp.Format(time.RFC3339))
	return err
}

// Recent returns the most recently logged edge cases.
func (e *EdgeCaseLog) Recent(ctx context.Context, limit int) ([]domain.EdgeCase, error) {
	rows, err := e.db.db.QueryContext(ctx, `
		SELECT id, player_id, score, rule_cheat, ml_probability, edge_type, features_json, should_flag, timestamp
		FROM edge_cases ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EdgeCase
	for rows.Next() {
		ec, err := scanEdgeCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}

// CountSince counts edge cases logged at or after sinceUnixMs.
func (e *EdgeCaseLog) CountSince(ctx context.Context, sinceUnixMs int64) (int, error) {
	cutoff := time.UnixMilli(sinceUnixMs).Format(time.RFC3339)
	var count int
	err := e.db.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM edge_cases WHERE timestamp >= ?
	`, cutoff).Scan(&count)
	return count, err
}

// Total returns the all-time edge case count, the input the Scheduler
// compares tick over tick.
func (e *EdgeCaseLog) Total(ctx context.Context) (int, error) {
	var count int
	err := e.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM edge_cases`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEdgeCase(row rowScanner) (domain.EdgeCase, error) {
	var ec domain.EdgeCase
	var ruleCheatInt, shouldFlagInt int
	var edgeType, featuresJSON, timestamp string
	if err := row.Scan(&ec.ID, &ec.PlayerID, &ec.Score, &ruleCheatInt, &ec.MLProbability, &edgeType, &featuresJSON, &shouldFlagInt, &timestamp); err != nil {
		return ec, err
	}
	ec.RuleCheat = ruleCheatInt == 1
	ec.ShouldFlag = shouldFlagInt == 1
	ec.EdgeType = domain.EdgeType(edgeType)
	ec.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	if err := json.Unmarshal([]byte(featuresJSON), &ec.Features); err != nil {
		return ec, err
	}
	return ec, nil
}
