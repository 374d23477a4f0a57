package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// modelRegistryMigrations returns the trained-model-version schema. Exactly
// one row may have active = 1 at a time, enforced in application code
// (Activate runs inside a transaction) rather than a SQL constraint,
// since SQLite has no partial-unique-index shorthand for "at most one
// true" across engine versions this module targets.
func modelRegistryMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS model_versions (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			active INTEGER NOT NULL DEFAULT 0,
			weights_json TEXT NOT NULL,
			norm_json TEXT NOT NULL,
			hidden1 INTEGER NOT NULL,
			hidden2 INTEGER NOT NULL,
			accuracy REAL NOT NULL DEFAULT 0,
			precision_ REAL NOT NULL DEFAULT 0,
			recall REAL NOT NULL DEFAULT 0,
			f1 REAL NOT NULL DEFAULT 0,
			train_samples INTEGER NOT NULL DEFAULT 0,
			validate_samples INTEGER NOT NULL DEFAULT 0,
			epochs INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_model_active ON model_versions(active)`,
	}
}

// ModelRegistry implements domain.ModelRegistry on top of DB.
type ModelRegistry struct {
	db *DB
}

// NewModelRegistry returns a domain.ModelRegistry backed by db.
func NewModelRegistry(db *DB) *ModelRegistry {
	return &ModelRegistry{db: db}
}

var _ domain.ModelRegistry = (*ModelRegistry)(nil)

// Save persists a freshly trained model version as inactive; callers
// decide separately whether to Activate it (the training worker's activation rule).
func (m *ModelRegistry) Save(ctx context.Context, mv domain.ModelVersion) error {
	weights, err := json.Marshal(mv.Weights)
	if err != nil {
		return err
	}
	norm, err := json.Marshal(mv.Norm)
	if err != nil {
		return err
	}
	_, err = m.db.db.ExecContext(ctx, `
		INSERT INTO model_versions (
			id, created_at, active, weights_json, norm_json, hidden1, hidden2,
			accuracy, precision_, recall, f1, train_samples, validate_samples, epochs
		) VALUES (?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, mv.ID, mv.CreatedAt.Format(time.RFC3339), string(weights), string(norm), mv.Hidden1, mv.Hidden2,
		mv.Metrics.Accuracy, mv.Metrics.Precision, mv.Metrics.Recall, mv.Metrics.F1,
		mv.Metrics.TrainSamples, mv.Metrics.ValidateSamples, mv.Metrics.Epochs)
	return err
}

// Activate marks id as the sole active model version.
func (m *ModelRegistry) Activate(ctx context.Context, id string) error {
	tx, err := m.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE model_versions SET active = 0 WHERE active = 1`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE model_versions SET active = 1 WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Active returns the currently active model version, or nil if none has
// been activated yet.
func (m *ModelRegistry) Active(ctx context.Context) (*domain.ModelVersion, error) {
	row := m.db.db.QueryRowContext(ctx, `
		SELECT id, created_at, active, weights_json, norm_json, hidden1, hidden2,
			accuracy, precision_, recall, f1, train_samples, validate_samples, epochs
		FROM model_versions WHERE active = 1 LIMIT 1
	`)
	mv, err := scanModelVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mv, nil
}

// List returns every stored model version, most recent first.
func (m *ModelRegistry) List(ctx context.Context) ([]domain.ModelVersion, error) {
	rows, err := m.db.db.QueryContext(ctx, `
		SELECT id, created_at, active, weights_json, norm_json, hidden1, hidden2,
			accuracy, precision_, recall, f1, train_samples, validate_samples, epochs
		FROM model_versions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ModelVersion
	for rows.Next() {
		mv, err := scanModelVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

func scanModelVersion(row rowScanner) (domain.ModelVersion, error) {
	var mv domain.ModelVersion
	var activeInt int
	var createdAt, weightsJSON, normJSON string
	if err := row.Scan(&mv.ID, &createdAt, &activeInt, &weightsJSON, &normJSON, &mv.Hidden1, &mv.Hidden2,
		&mv.Metrics.Accuracy, &mv.Metrics.Precision, &mv.Metrics.Recall, &mv.Metrics.F1,
		&mv.Metrics.TrainSamples, &mv.Metrics.ValidateSamples, &mv.Metrics.Epochs); err != nil {
		return mv, err
	}
	mv.Active = activeInt == 1
	mv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if err := json.Unmarshal([]byte(weightsJSON), &mv.Weights); err != nil {
		return mv, err
	}
	if err := json.Unmarshal([]byte(normJSON), &mv.Norm); err != nil {
		return mv, err
	}
	return mv, nil
}
