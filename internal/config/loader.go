// Package config provides configuration management for the temple crowd service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
// and falls back to built-in defaults for anything the file omits, so the
// service can start with no config file at all.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix("TEMPLE_CROWD")

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		// Expand environment variables in the configuration (${VAR} syntax)
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If the file doesn't exist, continue with defaults and environment variables

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration from a file that is required to exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	return Load(configPath)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "temple-crowd")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 50.0)
	v.SetDefault("server.rate_limit_burst", 25)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("data.csv_path", "data/crowd_timeseries.csv")
	v.SetDefault("data.history_years", 2)
	v.SetDefault("data.generator_seed", 42)

	v.SetDefault("model.artifact_path", "models/model.gob")
	v.SetDefault("model.estimators", 200)
	v.SetDefault("model.learning_rate", 0.1)
	v.SetDefault("model.max_depth", 3)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.cache_ttl_seconds", 60)
	v.SetDefault("model.cache_max_size", 10000)

	v.SetDefault("legacy.cache_dir", "models/legacy")
	v.SetDefault("legacy.fetch_timeout_seconds", 30)
	v.SetDefault("legacy.fetch_retry_attempts", 3)

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.interval_seconds", 10)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
