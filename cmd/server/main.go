// Package main provides the entry point for the temple crowd prediction API
// server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/temple-crowd/internal/api"
	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/database"
	"github.com/yourusername/temple-crowd/internal/legacy"
	"github.com/yourusername/temple-crowd/internal/logger"
	"github.com/yourusername/temple-crowd/internal/metrics"
	"github.com/yourusername/temple-crowd/internal/predictor"
	"github.com/yourusername/temple-crowd/internal/repository"
	"github.com/yourusername/temple-crowd/internal/scheduler"
	"github.com/yourusername/temple-crowd/internal/simulator"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "temple-crowd-server",
		Short: "Temple crowd prediction API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to configuration file")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return errors.New("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Temple crowd prediction service starting")

	metrics.InitRegistry()

	// Audit log storage is optional; the serving path works without it.
	auditLog := repository.NewNoopPredictionLog()
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := database.NewDB(ctx, cfg)
		cancel()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		auditLog, err = repository.NewPostgresPredictionLog(ctx, db)
		cancel()
		if err != nil {
			return err
		}
		appLog.Info("Prediction audit log database connected")
	}

	// The model must be ready before the server accepts traffic.
	crowdPredictor := predictor.NewService(cfg, appLog)
	if err := crowdPredictor.LoadOrTrain(); err != nil {
		return err
	}
	if score, err := crowdPredictor.FitScore(); err == nil {
		appLog.WithField("fit_score", score).Info("Prediction model ready")
	}

	legacyPredictor := legacy.NewPredictor(cfg.Legacy, appLog)

	sim := simulator.New(time.Now().UnixNano(), appLog)
	sched := scheduler.New(appLog)
	if cfg.Simulator.Enabled {
		if err := sched.AddEvery("simulator-tick", cfg.SimulatorInterval(), sim.Step); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	handlers := api.NewHandlers(crowdPredictor, legacyPredictor, sim, auditLog, appLog)
	router := api.NewRouter(cfg, handlers, appLog)

	server := &http.Server{
		Addr:    cfg.ListenAddress(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.WithField("address", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		appLog.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	appLog.Info("Server stopped")
	return nil
}
