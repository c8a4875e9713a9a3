// Package main generates the synthetic historical crowd dataset CSV.
package main

import (
	"flag"
	"log"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/config"
	"github.com/yourusername/temple-crowd/internal/dataset"
	"github.com/yourusername/temple-crowd/internal/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	out := flag.String("out", "", "output CSV path (defaults to the configured dataset path)")
	years := flag.Int("years", 0, "years of history to generate (defaults to the configured value)")
	seed := flag.Int64("seed", 0, "generator seed (defaults to the configured value)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	path := cfg.Data.CSVPath
	if *out != "" {
		path = *out
	}
	historyYears := cfg.Data.HistoryYears
	if *years > 0 {
		historyYears = *years
	}
	generatorSeed := cfg.Data.GeneratorSeed
	if *seed != 0 {
		generatorSeed = *seed
	}

	genCfg := dataset.DefaultGeneratorConfig(historyYears, generatorSeed)
	records := dataset.Generate(genCfg)
	if err := dataset.WriteCSV(path, records); err != nil {
		appLog.WithError(err).Fatal("Failed to write dataset")
	}

	appLog.WithFields(logrus.Fields{
		"path":  path,
		"rows":  len(records),
		"years": historyYears,
		"seed":  generatorSeed,
	}).Info("Dataset generated")
}
