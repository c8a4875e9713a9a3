// Package predictor hosts the crowd prediction service: it loads the trained
// model artifact (training one on first run) and serves point predictions and
// hourly forecasts from it.
package predictor

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/dataset"
	"github.com/yourusername/temple-crowd/internal/features"
	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/ml"
	"github.com/yourusername/temple-crowd/internal/models"
)

const (
	// MaxForecastHours bounds the forecast horizon.
	MaxForecastHours = 240

	// DefaultForecastHours is the horizon used when the caller does not ask
	// for a specific one.
	DefaultForecastHours = 48
)

// Service owns the model lifecycle. LoadOrTrain runs exactly once; after it
// succeeds the artifact is immutable and predictions are lock-free reads.
type Service struct {
	cfg    *config.Config
	logger *logrus.Logger
	store  *ml.ArtifactStore
	cache  *predictionCache

	loadOnce sync.Once
	loadErr  error
	artifact atomic.Pointer[ml.Artifact]

	// nowFn is replaced in tests to pin forecast start times.
	nowFn func() time.Time
}

// NewService creates the prediction service. The model is not loaded until
// LoadOrTrain is called.
func NewService(cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
		store:  ml.NewArtifactStore(cfg.Model.ArtifactPath),
		cache: newPredictionCache(
			time.Duration(cfg.Model.CacheTTLSeconds)*time.Second,
			cfg.Model.CacheMaxSize,
		),
		nowFn: time.Now,
	}
}

// LoadOrTrain loads the persisted artifact, or trains and persists a fresh
// one when none exists. Safe to call concurrently; only the first call does
// work and every caller observes its outcome.
func (s *Service) LoadOrTrain() error {
	s.loadOnce.Do(func() {
		s.loadErr = s.loadOrTrain()
		if s.loadErr == nil {
			a := s.artifact.Load()
			metrics.ModelLoaded.Set(1)
			metrics.ModelFitScore.Set(a.FitScore)
		}
	})
	return s.loadErr
}

func (s *Service) loadOrTrain() error {
	start := time.Now()
	artifact, err := s.store.Load()
	switch {
	case err == nil:
		metrics.ArtifactLoadDuration.Observe(time.Since(start).Seconds())
		s.logger.WithFields(logrus.Fields{
			"artifact_id": artifact.ID,
			"trained_at":  artifact.TrainedAt,
			"fit_score":   artifact.FitScore,
		}).Info("Model artifact loaded")
		s.artifact.Store(artifact)
		return nil

	case errors.Is(err, ml.ErrArtifactMissing):
		s.logger.Info("No model artifact found, training a new model")
		return s.train()

	default:
		return fmt.Errorf("failed to load model artifact: %w", err)
	}
}

func (s *Service) train() error {
	genCfg := dataset.DefaultGeneratorConfig(s.cfg.Data.HistoryYears, s.cfg.Data.GeneratorSeed)
	if err := dataset.Ensure(s.cfg.Data.CSVPath, genCfg, s.logger); err != nil {
		return fmt.Errorf("failed to ensure training dataset: %w", err)
	}

	records, err := dataset.ReadCSV(s.cfg.Data.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to read training dataset: %w", err)
	}

	artifact, err := ml.Train(records, ml.GBTConfig{
		NumTrees:       s.cfg.Model.Estimators,
		LearningRate:   s.cfg.Model.LearningRate,
		MaxDepth:       s.cfg.Model.MaxDepth,
		MinSamplesLeaf: ml.DefaultGBTConfig().MinSamplesLeaf,
		SubsampleRatio: ml.DefaultGBTConfig().SubsampleRatio,
		Seed:           s.cfg.Model.Seed,
	}, s.logger)
	if err != nil {
		return fmt.Errorf("model training failed: %w", err)
	}

	if err := s.store.Save(artifact); err != nil {
		return fmt.Errorf("failed to persist model artifact: %w", err)
	}

	s.artifact.Store(artifact)
	return nil
}

// Loaded reports whether a model artifact is available for predictions.
func (s *Service) Loaded() bool {
	return s.artifact.Load() != nil
}

// FitScore returns the in-sample R-squared of the loaded artifact.
func (s *Service) FitScore() (float64, error) {
	a := s.artifact.Load()
	if a == nil {
		return 0, ErrModelNotLoaded
	}
	return a.FitScore, nil
}

// PredictPoint encodes the raw inputs and returns the predicted pilgrim
// count, never negative.
func (s *Service) PredictPoint(in features.Inputs) (int, error) {
	a := s.artifact.Load()
	if a == nil {
		return 0, ErrModelNotLoaded
	}

	vector, err := features.Encode(in)
	if err != nil {
		return 0, err
	}

	if cached, ok := s.cache.Get(vector); ok {
		return cached, nil
	}

	start := time.Now()
	value, unknown, err := a.Pipeline.Predict(vector)
	if err != nil {
		return 0, err
	}
	metrics.PredictionLatency.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	for _, name := range unknown {
		metrics.RecordUnknownCategory(name)
	}

	prediction := clampCount(value)
	s.cache.Set(vector, prediction)
	return prediction, nil
}

// Forecast predicts the next `hours` hourly pilgrim counts, starting at the
// top of the hour after the current one. Calendar flags are zero and weather
// is sunny for every point. The horizon is clamped to [1, MaxForecastHours].
func (s *Service) Forecast(hours int) ([]models.ForecastPoint, error) {
	a := s.artifact.Load()
	if a == nil {
		return nil, ErrModelNotLoaded
	}
	if hours < 1 {
		hours = 1
	}
	if hours > MaxForecastHours {
		hours = MaxForecastHours
	}

	start := s.nowFn().UTC().Truncate(time.Hour).Add(time.Hour)
	if cached, ok := s.cache.GetForecast(start, hours); ok {
		return cached, nil
	}

	vectors := make([]models.FeatureVector, hours)
	timestamps := make([]time.Time, hours)
	for i := 0; i < hours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		timestamps[i] = ts
		vectors[i] = models.FeatureVector{
			DayOfWeek: dataset.DayOfWeek(ts),
			Month:     int(ts.Month()),
			Hour:      ts.Hour(),
			Weather:   models.WeatherSunny,
			IsWeekend: weekendFlag(ts),
		}
	}

	begin := time.Now()
	values, unknown, err := a.Pipeline.PredictBatch(vectors)
	if err != nil {
		return nil, err
	}
	metrics.PredictionLatency.WithLabelValues("forecast").Observe(time.Since(begin).Seconds())
	for _, name := range unknown {
		metrics.RecordUnknownCategory(name)
	}

	points := make([]models.ForecastPoint, hours)
	for i, v := range values {
		points[i] = models.ForecastPoint{
			Timestamp:         timestamps[i],
			PredictedPilgrims: clampCount(v),
		}
	}
	metrics.ForecastPointsTotal.Add(float64(hours))
	s.cache.SetForecast(start, hours, points)
	return points, nil
}

func weekendFlag(ts time.Time) int {
	if dataset.DayOfWeek(ts) >= 5 {
		return 1
	}
	return 0
}

// clampCount rounds a raw model output to a non-negative pilgrim count.
func clampCount(v float64) int {
	return int(math.Max(0, math.Round(v)))
}
