package repository

import "context"

// NoopPredictionLog is used when the audit log database is disabled.
type NoopPredictionLog struct{}

// NewNoopPredictionLog returns a PredictionLog that discards everything.
func NewNoopPredictionLog() PredictionLog {
	return NoopPredictionLog{}
}

// Record discards the entry.
func (NoopPredictionLog) Record(context.Context, PredictionLogEntry) error {
	return nil
}

// Recent returns no entries.
func (NoopPredictionLog) Recent(context.Context, int) ([]PredictionLogEntry, error) {
	return nil, nil
}
