// Package config provides configuration management for the temple crowd service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Legacy    LegacyConfig    `mapstructure:"legacy" validate:"required"`
	Simulator SimulatorConfig `mapstructure:"simulator" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitRPS    float64  `mapstructure:"rate_limit_rps" validate:"required,gt=0"`
	RateLimitBurst  int      `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// DataConfig represents the historical dataset configuration
type DataConfig struct {
	CSVPath       string `mapstructure:"csv_path" validate:"required"`
	HistoryYears  int    `mapstructure:"history_years" validate:"required,gt=0"`
	GeneratorSeed int64  `mapstructure:"generator_seed" validate:"required"`
}

// ModelConfig represents the training pipeline and prediction service configuration
type ModelConfig struct {
	ArtifactPath    string  `mapstructure:"artifact_path" validate:"required"`
	Estimators      int     `mapstructure:"estimators" validate:"required,gt=0"`
	LearningRate    float64 `mapstructure:"learning_rate" validate:"required,gt=0,lte=1"`
	MaxDepth        int     `mapstructure:"max_depth" validate:"required,gt=0"`
	Seed            int64   `mapstructure:"seed" validate:"required"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int     `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// LegacyConfig represents the legacy model artifact bundle configuration
type LegacyConfig struct {
	CacheDir              string `mapstructure:"cache_dir" validate:"required"`
	ModelURL              string `mapstructure:"model_url" validate:"omitempty,url"`
	DayEncoderURL         string `mapstructure:"day_encoder_url" validate:"omitempty,url"`
	FestivalEncoderURL    string `mapstructure:"festival_encoder_url" validate:"omitempty,url"`
	WeatherEncoderURL     string `mapstructure:"weather_encoder_url" validate:"omitempty,url"`
	FetchTimeoutSeconds   int    `mapstructure:"fetch_timeout_seconds" validate:"required,gt=0"`
	FetchRetryAttempts    int    `mapstructure:"fetch_retry_attempts" validate:"gte=0"`
}

// SimulatorConfig represents the realtime metrics simulator configuration
type SimulatorConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents the optional prediction audit log database.
// The serving path never depends on it; when disabled all writes are no-ops.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddress returns the host:port the API server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetDatabaseDSN returns a PostgreSQL DSN string for the audit log database
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SimulatorInterval returns the simulator cadence as a duration
func (c *Config) SimulatorInterval() time.Duration {
	return time.Duration(c.Simulator.IntervalSeconds) * time.Second
}
