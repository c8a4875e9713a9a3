// Package legacy serves predictions from the previous generation of the crowd
// model: a linear regressor over label-encoded day, festival, and weather,
// shipped as a four-file JSON artifact bundle. A rule-based heuristic covers
// the case where the bundle cannot be loaded at all.
package legacy

import (
	"context"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/metrics"
)

// Predictor answers simple day/festival/weather predictions from the legacy
// bundle. The bundle is loaded lazily on first use and cached for the process
// lifetime; a load failure is also cached, callers then fall back to Estimate.
type Predictor struct {
	fetcher *Fetcher
	logger  *logrus.Logger

	loadOnce sync.Once
	bundle   *Bundle
	loadErr  error
}

// NewPredictor creates the legacy predictor. Nothing is fetched until the
// first prediction.
func NewPredictor(cfg config.LegacyConfig, logger *logrus.Logger) *Predictor {
	return &Predictor{fetcher: NewFetcher(cfg, logger), logger: logger}
}

// Predict returns the legacy model's estimate for the given day name,
// festival (nil meaning none), and weather. Unknown categorical values encode
// to the out-of-vocabulary bucket rather than erroring. If the bundle is
// unavailable the error is non-nil and the caller should use Estimate.
func (p *Predictor) Predict(ctx context.Context, day string, festival *string, weather string) (int, error) {
	p.loadOnce.Do(func() {
		p.bundle, p.loadErr = p.fetcher.Load(ctx)
		if p.loadErr != nil {
			p.logger.WithError(p.loadErr).Warn("Legacy model bundle unavailable, heuristic fallback active")
		}
	})
	if p.loadErr != nil {
		return 0, p.loadErr
	}

	festivalName := "No"
	if festival != nil && *festival != "" {
		festivalName = *festival
	}

	b := p.bundle
	for encoder, in := range map[string]struct {
		enc   *LabelEncoder
		value string
	}{
		"day":      {b.DayEncoder, day},
		"festival": {b.FestivalEncoder, festivalName},
		"weather":  {b.WeatherEncoder, weather},
	} {
		if !in.enc.Known(in.value) {
			metrics.RecordUnknownCategory(encoder)
		}
	}

	features := []float64{
		float64(b.DayEncoder.Transform(day)),
		float64(b.FestivalEncoder.Transform(festivalName)),
		float64(b.WeatherEncoder.Transform(weather)),
	}
	raw, err := b.Model.Predict(features)
	if err != nil {
		return 0, err
	}

	count := int(math.Round(raw))
	if count < 0 {
		count = 0
	}
	return count, nil
}

// Available reports whether the bundle loaded successfully. It is only
// meaningful after the first Predict call.
func (p *Predictor) Available() bool {
	return p.bundle != nil && p.loadErr == nil
}
