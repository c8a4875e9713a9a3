// Package config provides configuration management for the temple crowd service.
package config

import (
	"os"
	"testing"
)

const (
	validConfigPath     = "testdata/valid_config.yaml"
	expansionConfigPath = "testdata/expansion_config.yaml"
	missingConfigPath   = "testdata/nonexistent_config.yaml"
)

// TestLoadValidConfig tests loading a complete configuration file
func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	if cfg.App.Name != "temple-crowd" {
		t.Errorf("expected app name 'temple-crowd', got '%s'", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got '%s'", cfg.App.Environment)
	}
	if cfg.Model.Estimators != 200 {
		t.Errorf("expected 200 estimators, got %d", cfg.Model.Estimators)
	}
	if cfg.Simulator.IntervalSeconds != 10 {
		t.Errorf("expected simulator interval 10s, got %d", cfg.Simulator.IntervalSeconds)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

// TestLoadMissingFileUsesDefaults tests that a missing file falls back to defaults
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(missingConfigPath)
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Data.HistoryYears != 2 {
		t.Errorf("expected default history of 2 years, got %d", cfg.Data.HistoryYears)
	}
	if cfg.Model.Seed != 42 {
		t.Errorf("expected default model seed 42, got %d", cfg.Model.Seed)
	}
	if cfg.Database.Enabled {
		t.Error("expected database disabled by default")
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

// TestMustLoadMissingFile tests that MustLoad rejects a missing file
func TestMustLoadMissingFile(t *testing.T) {
	if _, err := MustLoad(missingConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestEnvPlaceholderExpansion tests ${VAR} expansion inside the YAML file
func TestEnvPlaceholderExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

// TestValidateRejectsBadEnvironment tests the custom environment rule
func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg.App.Environment = "invalid"
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for bad environment")
	}
}

// TestValidateRejectsPartialLegacyURLs tests the all-or-nothing legacy URL rule
func TestValidateRejectsPartialLegacyURLs(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg.Legacy.ModelURL = "https://example.com/model.json"
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for partial legacy URL set")
	}
}

// TestValidateRejectsEnabledDatabaseWithoutHost tests cross-field database validation
func TestValidateRejectsEnabledDatabaseWithoutHost(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cfg.Database.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Error("expected validation error for enabled database without connection details")
	}
}

// TestDatabaseDSN tests DSN construction
func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database = DatabaseConfig{
		Host: "localhost", Port: 5432, Name: "temple", User: "temple",
		Password: "pw", SSLMode: "disable",
	}
	want := "postgres://temple:pw@localhost:5432/temple?sslmode=disable"
	if got := cfg.GetDatabaseDSN(); got != want {
		t.Errorf("expected DSN '%s', got '%s'", want, got)
	}
}
