package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/metrics"
)

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg *config.Config, handlers *Handlers, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger))
	router.Use(CORS(cfg.Server.AllowedOrigins))
	router.Use(RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	router.GET("/health", handlers.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/realtime_metrics", handlers.GetRealtimeMetrics)
		apiGroup.GET("/realtime_metrics/ws", handlers.StreamMetrics)
		apiGroup.GET("/model_info", handlers.ModelInfo)
		apiGroup.GET("/crowd_forecast", handlers.CrowdForecast)
		apiGroup.POST("/predict_crowd", handlers.PredictCrowd)
		apiGroup.POST("/predict_simple", handlers.PredictSimple)
	}

	return router
}
