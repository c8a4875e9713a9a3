// Package repository persists the prediction audit log. The serving path
// treats it as fire-and-forget: a write failure is logged, never surfaced.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PredictionLogEntry is one audited prediction.
type PredictionLogEntry struct {
	ID                uuid.UUID
	CreatedAt         time.Time
	Endpoint          string
	Source            string
	RequestSummary    string
	PredictedPilgrims int
}

// PredictionLog records served predictions for later analysis.
type PredictionLog interface {
	Record(ctx context.Context, entry PredictionLogEntry) error
	Recent(ctx context.Context, limit int) ([]PredictionLogEntry, error)
}
