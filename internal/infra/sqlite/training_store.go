package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"github.com/snakeguard/snakeguard/internal/domain"
)

// trainingSampleMigrations returns the labeled-sample schema the Training
// Worker reads from on every run.
func trainingSampleMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS training_samples (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			features_json TEXT NOT NULL,
			label TEXT NOT NULL,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_training_created ON training_samples(created_at)`,
	}
}

// TrainingStore implements domain.TrainingStore on top of DB.
type TrainingStore struct {
	db *DB
}

// NewTrainingStore returns a domain.TrainingStore backed by db.
func NewTrainingStore(db *DB) *TrainingStore {
	return &TrainingStore{db: db}
}

var _ domain.TrainingStore = (*TrainingStore)(nil)

// Append persists one labeled training sample.
func (t *TrainingStore) Append(ctx context.Context, s domain.TrainingSample) error {
	features, err := json.Marshal(s.Features)
	if err != nil {
		return err
	}
	_, err = t.db.db.ExecContext(ctx, `
		INSERT INTO training_samples (id, player_id, features_json, label, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.PlayerID, string(features), string(s.Label), string(s.Source), s.CreatedAt.Format(time.RFC3339))
	return err
}

// All returns every stored sample, the corpus the Training Worker
// augments with synthetic data before each run.
func (t *TrainingStore) All(ctx context.Context) ([]domain.TrainingSample, error) {
	rows, err := t.db.db.QueryContext(ctx, `
		SELECT id, player_id, features_json, label, source, created_at
		FROM training_samples ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrainingSample
	for rows.Next() {
		var s domain.TrainingSample
		var featuresJSON, label, source, createdAt string
		if err := rows.Scan(&s.ID, &s.PlayerID, &featuresJSON, &label, &source, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(featuresJSON), &s.Features); err != nil {
			return nil, err
		}
		s.Label = domain.SampleLabel(label)
		s.Source = domain.SampleSource(source)
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of stored samples.
func (t *TrainingStore) Count(ctx context.Context) (int, error) {
	var count int
	err := t.db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_samples`).Scan(&count)
	return count, err
}
