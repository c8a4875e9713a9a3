package ml

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/models"
)

// Train fits the full pipeline on the historical records and returns a fresh
// artifact. The fit score is the in-sample R-squared over the training data —
// an optimistic upper bound, not a generalization estimate; there is no
// held-out split. Any fit error is fatal and propagates.
func Train(records []models.HistoricalRecord, cfg GBTConfig, logger *logrus.Logger) (*Artifact, error) {
	start := time.Now()
	if len(records) == 0 {
		return nil, ErrNoTrainingData
	}

	vectors := make([]models.FeatureVector, len(records))
	y := make([]float64, len(records))
	for i, rec := range records {
		vectors[i] = models.FeatureVector{
			DayOfWeek:     rec.DayOfWeek,
			Month:         rec.Month,
			Hour:          rec.Hour,
			Weather:       rec.Weather,
			IsWeekend:     rec.IsWeekend,
			IsHoliday:     rec.IsHoliday,
			IsFestivalDay: rec.IsFestivalDay,
		}
		y[i] = float64(rec.PilgrimCount)
	}

	pre := FitPreprocessor(vectors)
	X, _ := pre.TransformBatch(vectors)

	model := NewGBTRegressor(cfg)
	if err := model.Fit(X, y); err != nil {
		return nil, err
	}

	estimates, err := model.PredictBatch(X)
	if err != nil {
		return nil, err
	}
	score := stat.RSquaredFrom(estimates, y, nil)

	elapsed := time.Since(start)
	metrics.TrainingDuration.Observe(elapsed.Seconds())
	logger.WithFields(logrus.Fields{
		"rows":     len(records),
		"features": pre.Width(),
		"trees":    model.Config.NumTrees,
		"score":    score,
		"duration": elapsed,
	}).Info("Model training completed")

	return &Artifact{
		ID:            uuid.New(),
		SchemaVersion: SchemaVersion,
		TrainedAt:     time.Now().UTC(),
		FitScore:      score,
		Pipeline:      &Pipeline{Pre: pre, Model: model},
	}, nil
}
