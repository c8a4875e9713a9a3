// Package ml implements the crowd regression pipeline: categorical
// preprocessing, a gradient-boosted tree regressor, and artifact persistence.
package ml

import "errors"

var (
	// ErrArtifactMissing indicates no artifact exists at the canonical slot
	ErrArtifactMissing = errors.New("model artifact not found")

	// ErrArtifactCorrupt indicates the artifact could not be decoded
	ErrArtifactCorrupt = errors.New("model artifact corrupt")

	// ErrNoTrainingData indicates training was attempted on an empty dataset
	ErrNoTrainingData = errors.New("no training data")

	// ErrNotFitted indicates prediction was attempted before fitting
	ErrNotFitted = errors.New("model not fitted")
)
