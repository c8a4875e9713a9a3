package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/features"
	"github.com/yourusername/temple-crowd/internal/logger"
	"github.com/yourusername/temple-crowd/internal/models"
	"github.com/yourusername/temple-crowd/internal/predictor"
	"github.com/yourusername/temple-crowd/internal/repository"
)

type stubPredictor struct {
	loaded   bool
	count    int
	fitScore float64
	err      error
}

func (s *stubPredictor) PredictPoint(in features.Inputs) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if _, err := features.Encode(in); err != nil {
		return 0, err
	}
	return s.count, nil
}

func (s *stubPredictor) Forecast(hours int) ([]models.ForecastPoint, error) {
	if s.err != nil {
		return nil, s.err
	}
	if hours < 1 {
		hours = 1
	}
	if hours > predictor.MaxForecastHours {
		hours = predictor.MaxForecastHours
	}
	points := make([]models.ForecastPoint, hours)
	for i := range points {
		points[i].PredictedPilgrims = s.count
	}
	return points, nil
}

func (s *stubPredictor) FitScore() (float64, error) {
	if !s.loaded {
		return 0, predictor.ErrModelNotLoaded
	}
	return s.fitScore, nil
}

func (s *stubPredictor) Loaded() bool { return s.loaded }

type stubLegacy struct {
	count int
	err   error
}

func (s *stubLegacy) Predict(context.Context, string, *string, string) (int, error) {
	return s.count, s.err
}

type stubLive struct {
	snapshot models.LiveMetrics
}

func (s *stubLive) Snapshot() models.LiveMetrics { return s.snapshot }

func (s *stubLive) Subscribe() (<-chan models.LiveMetrics, func()) {
	ch := make(chan models.LiveMetrics)
	return ch, func() {}
}

func testRouter(crowd CrowdPredictor, simple SimplePredictor, live LiveMetricsSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger("error", "development")

	cfg := &config.Config{
		App: config.AppConfig{Environment: "development"},
		Server: config.ServerConfig{
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		Metrics: config.MetricsConfig{Enabled: false, Path: "/metrics"},
	}
	handlers := NewHandlers(crowd, simple, live, repository.NewNoopPredictionLog(), log)
	return NewRouter(cfg, handlers, log)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model_loaded":true`)
}

func TestGetRealtimeMetrics(t *testing.T) {
	live := &stubLive{snapshot: models.LiveMetrics{
		ActivePilgrims:     2500,
		QueueWaitTimeMin:   20,
		TodaysOfferingsINR: 100000,
		EventsToday:        6,
	}}
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, live)

	w := doJSON(t, router, http.MethodGet, "/api/realtime_metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.LiveMetrics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, live.snapshot, got)
}

func TestPredictCrowd(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true, count: 3200}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodPost, "/api/predict_crowd", PredictRequest{Weather: "sunny"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"predicted_pilgrims":3200`)
}

func TestPredictCrowdInvalidFlag(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{})

	bad := 7
	w := doJSON(t, router, http.MethodPost, "/api/predict_crowd", PredictRequest{IsHoliday: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictCrowdInvalidTimestamp(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{})

	ts := "yesterday"
	w := doJSON(t, router, http.MethodPost, "/api/predict_crowd", PredictRequest{Timestamp: &ts})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid timestamp")
}

func TestPredictCrowdModelNotLoaded(t *testing.T) {
	router := testRouter(&stubPredictor{err: predictor.ErrModelNotLoaded}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodPost, "/api/predict_crowd", PredictRequest{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCrowdForecastDefaultHorizon(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true, count: 1000}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodGet, "/api/crowd_forecast", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.ForecastPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, predictor.DefaultForecastHours)
}

func TestCrowdForecastHorizonHandling(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{})

	forecastLen := func(w *httptest.ResponseRecorder) int {
		var got []models.ForecastPoint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		return len(got)
	}

	w := doJSON(t, router, http.MethodGet, "/api/crowd_forecast?hours=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, forecastLen(w))

	// Out-of-range horizons clamp instead of failing.
	w = doJSON(t, router, http.MethodGet, "/api/crowd_forecast?hours=0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, forecastLen(w))

	w = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/crowd_forecast?hours=%d", predictor.MaxForecastHours+100), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, predictor.MaxForecastHours, forecastLen(w))

	w = doJSON(t, router, http.MethodGet, "/api/crowd_forecast?hours=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictSimpleUsesLegacyModel(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{count: 1500}, &stubLive{})

	w := doJSON(t, router, http.MethodPost, "/api/predict_simple", SimplePredictRequest{
		Day: "Saturday", Weather: "sunny",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"predicted_crowd":1500`)
	assert.Contains(t, w.Body.String(), `"source":"legacy_model"`)
}

func TestPredictSimpleHeuristicFallback(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true},
		&stubLegacy{err: fmt.Errorf("bundle unavailable")}, &stubLive{})

	w := doJSON(t, router, http.MethodPost, "/api/predict_simple", SimplePredictRequest{
		Day: "Saturday", Weather: "sunny",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"predicted_crowd":4000`)
	assert.Contains(t, w.Body.String(), `"source":"heuristic"`)

	festival := "Diwali"
	w = doJSON(t, router, http.MethodPost, "/api/predict_simple", SimplePredictRequest{
		Day: "Monday", Festival: &festival, Weather: "stormy",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"predicted_crowd":5100`)
}

func TestPredictSimpleMissingFields(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodPost, "/api/predict_simple", map[string]string{"day": "Monday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModelInfo(t *testing.T) {
	router := testRouter(&stubPredictor{loaded: true, fitScore: 0.93}, &stubLegacy{}, &stubLive{})

	w := doJSON(t, router, http.MethodGet, "/api/model_info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fit_score":0.93`)

	router = testRouter(&stubPredictor{loaded: false}, &stubLegacy{}, &stubLive{})
	w = doJSON(t, router, http.MethodGet, "/api/model_info", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewLogger("error", "development")
	cfg := &config.Config{
		App:     config.AppConfig{Environment: "development"},
		Server:  config.ServerConfig{RateLimitRPS: 1, RateLimitBurst: 1},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}
	handlers := NewHandlers(&stubPredictor{loaded: true}, &stubLegacy{}, &stubLive{},
		repository.NewNoopPredictionLog(), log)
	router := NewRouter(cfg, handlers, log)

	first := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
