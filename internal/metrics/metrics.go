// Package metrics provides the centralized Prometheus metrics registry for the
// temple crowd service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temple_crowd",
		Name:      "predictions_total",
		Help:      "Total number of predictions served, by endpoint and source",
	}, []string{"endpoint", "source"})
	ForecastPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "temple_crowd",
		Name:      "forecast_points_total",
		Help:      "Total number of forecast horizon points generated",
	})
	FallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "temple_crowd",
		Name:      "fallbacks_total",
		Help:      "Total number of simple predictions answered by the heuristic fallback",
	})
	UnknownCategoriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "temple_crowd",
		Name:      "unknown_categories_total",
		Help:      "Total number of categorical values encoded via the unknown bucket",
	}, []string{"encoder"})
	SimulatorIterationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "temple_crowd",
		Name:      "simulator_iterations_total",
		Help:      "Total number of realtime metrics simulator iterations",
	})
)

// Gauge metrics
var (
	ModelFitScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "model_fit_score",
		Help:      "In-sample R-squared of the loaded model artifact",
	})
	ModelLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "model_loaded",
		Help:      "Whether a model artifact is loaded (1) or not (0)",
	})
	PredictionCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "prediction_cache_hit_ratio",
		Help:      "Hit ratio of the point-prediction cache",
	})
	LiveActivePilgrims = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "live_active_pilgrims",
		Help:      "Simulated number of pilgrims currently on site",
	})
	LiveQueueWaitMinutes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "live_queue_wait_minutes",
		Help:      "Simulated darshan queue wait time in minutes",
	})
	LiveOfferingsINR = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "live_offerings_inr",
		Help:      "Simulated cumulative offerings for the day in INR",
	})
	LiveEventsToday = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "temple_crowd",
		Name:      "live_events_today",
		Help:      "Simulated number of temple events scheduled today",
	})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "temple_crowd",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of prediction operations in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "temple_crowd",
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ArtifactLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "temple_crowd",
		Name:      "artifact_load_duration_seconds",
		Help:      "Duration of model artifact loads in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(ForecastPointsTotal)
		registry.MustRegister(FallbacksTotal)
		registry.MustRegister(UnknownCategoriesTotal)
		registry.MustRegister(SimulatorIterationsTotal)

		// Register gauge metrics
		registry.MustRegister(ModelFitScore)
		registry.MustRegister(ModelLoaded)
		registry.MustRegister(PredictionCacheHitRatio)
		registry.MustRegister(LiveActivePilgrims)
		registry.MustRegister(LiveQueueWaitMinutes)
		registry.MustRegister(LiveOfferingsINR)
		registry.MustRegister(LiveEventsToday)

		// Register histogram metrics
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(ArtifactLoadDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a served prediction.
func RecordPrediction(endpoint, source string) {
	PredictionsTotal.WithLabelValues(endpoint, source).Inc()
}

// RecordFallback records a heuristic fallback answer.
func RecordFallback() {
	FallbacksTotal.Inc()
}

// RecordUnknownCategory records an unknown-bucket encoding event.
func RecordUnknownCategory(encoder string) {
	UnknownCategoriesTotal.WithLabelValues(encoder).Inc()
}

// UpdateLiveMetrics updates the live metrics gauges from a snapshot.
func UpdateLiveMetrics(active, wait, offerings, events int) {
	LiveActivePilgrims.Set(float64(active))
	LiveQueueWaitMinutes.Set(float64(wait))
	LiveOfferingsINR.Set(float64(offerings))
	LiveEventsToday.Set(float64(events))
	SimulatorIterationsTotal.Inc()
}
