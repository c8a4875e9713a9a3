package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopPredictionLog(t *testing.T) {
	log := NewNoopPredictionLog()

	err := log.Record(context.Background(), PredictionLogEntry{Endpoint: "predict"})
	assert.NoError(t, err)

	entries, err := log.Recent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
