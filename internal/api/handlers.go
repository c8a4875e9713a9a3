// Package api exposes the crowd prediction service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/features"
	"github.com/yourusername/temple-crowd/internal/legacy"
	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/models"
	"github.com/yourusername/temple-crowd/internal/predictor"
	"github.com/yourusername/temple-crowd/internal/repository"
)

// CrowdPredictor is the model-backed prediction surface the handlers need.
type CrowdPredictor interface {
	PredictPoint(in features.Inputs) (int, error)
	Forecast(hours int) ([]models.ForecastPoint, error)
	FitScore() (float64, error)
	Loaded() bool
}

// SimplePredictor answers legacy day/festival/weather predictions.
type SimplePredictor interface {
	Predict(ctx context.Context, day string, festival *string, weather string) (int, error)
}

// LiveMetricsSource serves realtime metrics snapshots and update streams.
type LiveMetricsSource interface {
	Snapshot() models.LiveMetrics
	Subscribe() (<-chan models.LiveMetrics, func())
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	predictor CrowdPredictor
	legacy    SimplePredictor
	live      LiveMetricsSource
	audit     repository.PredictionLog
	logger    *logrus.Logger
}

// NewHandlers wires the handlers to their backing services.
func NewHandlers(
	crowd CrowdPredictor,
	legacy SimplePredictor,
	live LiveMetricsSource,
	audit repository.PredictionLog,
	logger *logrus.Logger,
) *Handlers {
	return &Handlers{
		predictor: crowd,
		legacy:    legacy,
		live:      live,
		audit:     audit,
		logger:    logger,
	}
}

// Health reports service liveness and whether the model is ready.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.predictor.Loaded(),
	})
}

// ModelInfo returns the loaded model's fit score.
func (h *Handlers) ModelInfo(c *gin.Context) {
	score, err := h.predictor.FitScore()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model_loaded": true,
		"fit_score":    score,
	})
}

// GetRealtimeMetrics serves the latest simulator snapshot.
func (h *Handlers) GetRealtimeMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.live.Snapshot())
}

// PredictCrowd serves a model-backed point prediction.
func (h *Handlers) PredictCrowd(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := req.Inputs()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.predictor.PredictPoint(in)
	switch {
	case errors.Is(err, features.ErrInvalidFlag):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, predictor.ErrModelNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded"})
		return
	case err != nil:
		h.logger.WithError(err).Error("Point prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	metrics.RecordPrediction("predict", "model")
	h.recordAudit(c.Request.Context(), "predict", "model",
		fmt.Sprintf("weather=%s", req.Weather), count)
	c.JSON(http.StatusOK, gin.H{"predicted_pilgrims": count})
}

// CrowdForecast serves the hourly forecast. The horizon defaults to 48 hours;
// out-of-range values are clamped to [1, 240] rather than rejected.
func (h *Handlers) CrowdForecast(c *gin.Context) {
	hours := predictor.DefaultForecastHours
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be an integer"})
			return
		}
		hours = parsed
	}

	points, err := h.predictor.Forecast(hours)
	switch {
	case errors.Is(err, predictor.ErrModelNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded"})
		return
	case err != nil:
		h.logger.WithError(err).Error("Forecast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
		return
	}

	metrics.RecordPrediction("forecast", "model")
	h.recordAudit(c.Request.Context(), "forecast", "model",
		fmt.Sprintf("hours=%d", len(points)), points[0].PredictedPilgrims)
	c.JSON(http.StatusOK, points)
}

// PredictSimple serves the legacy day/festival/weather prediction. When the
// legacy bundle is unavailable it answers from the heuristic instead of
// failing, so this endpoint always returns 200 for valid input.
func (h *Handlers) PredictSimple(c *gin.Context) {
	var req SimplePredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.legacy.Predict(c.Request.Context(), req.Day, req.Festival, req.Weather)
	source := "legacy_model"
	if err != nil {
		count = legacyEstimate(req)
		source = "heuristic"
		metrics.RecordFallback()
	}

	metrics.RecordPrediction("predict_simple", source)
	h.recordAudit(c.Request.Context(), "predict_simple", source,
		fmt.Sprintf("day=%s festival=%s weather=%s", req.Day, req.FestivalName(), req.Weather), count)
	c.JSON(http.StatusOK, gin.H{
		"predicted_crowd": count,
		"source":          source,
	})
}

func legacyEstimate(req SimplePredictRequest) int {
	return legacy.Estimate(req.Day, req.FestivalName(), req.Weather)
}

func (h *Handlers) recordAudit(ctx context.Context, endpoint, source, summary string, count int) {
	err := h.audit.Record(ctx, repository.PredictionLogEntry{
		Endpoint:          endpoint,
		Source:            source,
		RequestSummary:    summary,
		PredictedPilgrims: count,
	})
	if err != nil {
		h.logger.WithError(err).Warn("Failed to record prediction audit entry")
	}
}
