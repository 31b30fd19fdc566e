package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/features"
	"github.com/khkk24/projeto-how-final/internal/infrastructure"
	"github.com/khkk24/projeto-how-final/internal/ml"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func main() {
	bundleDir := flag.String("bundle", "", "artifact bundle directory (default: models/severity_classifier)")
	inputCSV := flag.String("input", "", "optional CSV file to score")
	limit := flag.Int("limit", 10, "number of sample predictions to print")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(cfg)
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *bundleDir == "" {
		*bundleDir = paths.CurrentModelDir
	}

	classifier := ml.NewSeverityClassifier(logger)
	if err := classifier.Load(*bundleDir); err != nil {
		logger.Error("failed to load artifact bundle",
			slog.String("dir", *bundleDir),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	info, err := classifier.Info()
	if err != nil {
		logger.Error("artifact info unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}
	printInfo(info, *bundleDir)

	if *inputCSV == "" {
		return
	}

	ctx := context.Background()
	table, skipped, err := dataset.NewLoader(logger).LoadFile(ctx, *inputCSV)
	if err != nil {
		logger.Error("failed to load input CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cleaned, err := dataset.NewCleaner(logger).Clean(ctx, table)
	if err != nil {
		logger.Error("failed to clean input CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	enriched, err := features.Build(cleaned)
	if err != nil {
		logger.Error("failed to build features", slog.String("error", err.Error()))
		os.Exit(1)
	}

	predictions, err := classifier.Predict(ctx, enriched)
	if err != nil {
		logger.Error("prediction failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("\nscored %d rows (%d skipped during load)\n", len(predictions), skipped)
	for i, p := range predictions {
		if i >= *limit {
			break
		}
		fmt.Printf("  row %-5d %-22s confidence %.3f\n", i, p.Label, p.Confidence)
	}
}

func printInfo(info domain.ArtifactInfo, dir string) {
	fmt.Printf("artifact bundle: %s\n", dir)
	fmt.Printf("model type:      %s\n", info.ModelType)
	fmt.Printf("trained at:      %s\n", info.TrainedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("random state:    %d\n", info.RandomState)
	fmt.Printf("classes:         %v\n", info.Classes)
	fmt.Printf("categorical:     %v\n", info.CategoricalFeatures)
	fmt.Printf("numeric:         %v\n", info.NumericFeatures)
}
