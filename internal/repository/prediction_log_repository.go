package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/temple-crowd/internal/database"
)

const createPredictionLogTable = `
	CREATE TABLE IF NOT EXISTS prediction_log (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		endpoint TEXT NOT NULL,
		source TEXT NOT NULL,
		request_summary TEXT NOT NULL,
		predicted_pilgrims INTEGER NOT NULL
	)
`

// PostgresPredictionLog implements PredictionLog on PostgreSQL.
type PostgresPredictionLog struct {
	db *database.DB
}

// NewPostgresPredictionLog creates the repository and ensures its table
// exists.
func NewPostgresPredictionLog(ctx context.Context, db *database.DB) (PredictionLog, error) {
	if _, err := db.Pool().Exec(ctx, createPredictionLogTable); err != nil {
		return nil, fmt.Errorf("failed to create prediction_log table: %w", err)
	}
	return &PostgresPredictionLog{db: db}, nil
}

// Record inserts one audit entry.
func (r *PostgresPredictionLog) Record(ctx context.Context, entry PredictionLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO prediction_log (id, created_at, endpoint, source, request_summary, predicted_pilgrims)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Pool().Exec(ctx, query,
		entry.ID, entry.CreatedAt, entry.Endpoint, entry.Source, entry.RequestSummary, entry.PredictedPilgrims,
	)
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (r *PostgresPredictionLog) Recent(ctx context.Context, limit int) ([]PredictionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, created_at, endpoint, source, request_summary, predicted_pilgrims
		FROM prediction_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction log: %w", err)
	}
	defer rows.Close()

	var entries []PredictionLogEntry
	for rows.Next() {
		var e PredictionLogEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Endpoint, &e.Source, &e.RequestSummary, &e.PredictedPilgrims); err != nil {
			return nil, fmt.Errorf("failed to scan prediction log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read prediction log: %w", err)
	}
	return entries, nil
}
