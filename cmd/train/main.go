// Package main trains the crowd prediction model and writes the artifact,
// regenerating the historical dataset first when it is missing.
package main

import (
	"flag"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/dataset"
	"github.com/yourusername/temple-crowd/internal/logger"
	"github.com/yourusername/temple-crowd/internal/ml"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	force := flag.Bool("force", false, "retrain even if an artifact already exists")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	store := ml.NewArtifactStore(cfg.Model.ArtifactPath)
	if !*force {
		if existing, err := store.Load(); err == nil {
			appLog.WithFields(logrus.Fields{
				"artifact_id": existing.ID,
				"trained_at":  existing.TrainedAt,
				"fit_score":   existing.FitScore,
			}).Info("Artifact already exists, use -force to retrain")
			return
		}
	}

	genCfg := dataset.DefaultGeneratorConfig(cfg.Data.HistoryYears, cfg.Data.GeneratorSeed)
	if err := dataset.Ensure(cfg.Data.CSVPath, genCfg, appLog); err != nil {
		appLog.WithError(err).Fatal("Failed to ensure dataset")
	}

	records, err := dataset.ReadCSV(cfg.Data.CSVPath)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to read dataset")
	}

	gbtCfg := ml.DefaultGBTConfig()
	gbtCfg.NumTrees = cfg.Model.Estimators
	gbtCfg.LearningRate = cfg.Model.LearningRate
	gbtCfg.MaxDepth = cfg.Model.MaxDepth
	gbtCfg.Seed = cfg.Model.Seed

	artifact, err := ml.Train(records, gbtCfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Training failed")
	}
	if err := store.Save(artifact); err != nil {
		appLog.WithError(err).Fatal("Failed to save artifact")
	}

	appLog.WithFields(logrus.Fields{
		"artifact_id": artifact.ID,
		"fit_score":   artifact.FitScore,
		"path":        store.Path(),
	}).Info("Model trained and saved")
}
