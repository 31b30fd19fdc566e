package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/features"
	"github.com/khkk24/projeto-how-final/internal/infrastructure"
	"github.com/khkk24/projeto-how-final/internal/ml"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func main() {
	yearsFlag := flag.String("years", "", "comma-separated years to train on (default: configured years)")
	modelFlag := flag.String("model", "both", "model to train: random_forest | gradient_boosting | both")
	trees := flag.Int("trees", 0, "number of trees / boosting rounds (0 = default)")
	maxDepth := flag.Int("max-depth", 0, "maximum tree depth (0 = default)")
	testSize := flag.Float64("test-size", 0, "held-out fraction (0 = configured default)")
	seed := flag.Int64("seed", 0, "random seed (0 = configured default)")
	outDir := flag.String("out", "", "artifact bundle directory (default: models/severity_classifier)")
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
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = paths.CurrentModelDir
	}

	years := cfg.Data.DefaultYears
	if *yearsFlag != "" {
		years, err = parseYears(*yearsFlag)
		if err != nil {
			logger.Error("invalid --years", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx := context.Background()
	table, err := prepare(ctx, logger, paths.DataDir, years)
	if err != nil {
		logger.Error("dataset preparation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset ready",
		slog.Any("years", years),
		slog.Int("rows", table.NumRows()))

	candidates := []string{domain.ModelRandomForest, domain.ModelGradientBoosting}
	if *modelFlag != "both" {
		candidates = []string{*modelFlag}
	}

	var best *domain.TrainSummary
	var bestClassifier *ml.SeverityClassifier
	for _, modelType := range candidates {
		classifier := ml.NewSeverityClassifier(logger)
		summary, err := classifier.Train(ctx, table, ml.TrainOptions{
			ModelType: modelType,
			TestSize:  orFloat(*testSize, cfg.Model.TestSize),
			Trees:     *trees,
			MaxDepth:  *maxDepth,
			Seed:      orInt64(*seed, cfg.Model.RandomSeed),
		})
		if err != nil {
			logger.Error("training failed",
				slog.String("model_type", modelType),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		fmt.Printf("%s: accuracy %.4f (train %d, test %d)\n",
			summary.ModelType, summary.Accuracy, summary.TrainRows, summary.TestRows)
		for _, cm := range summary.ClassReport {
			fmt.Printf("  %-22s precision %.3f  recall %.3f  f1 %.3f  support %d\n",
				cm.Class, cm.Precision, cm.Recall, cm.F1, cm.Support)
		}

		if best == nil || summary.Accuracy > best.Accuracy {
			best = summary
			bestClassifier = classifier
		}
	}

	if err := bestClassifier.Save(*outDir); err != nil {
		logger.Error("failed to save artifact bundle", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("\nbest model: %s (accuracy %.4f), saved to %s\n", best.ModelType, best.Accuracy, *outDir)
	fmt.Println("top features:")
	for i, imp := range best.Importances {
		if i >= 5 {
			break
		}
		fmt.Printf("  %-24s %.4f\n", imp.Feature, imp.Importance)
	}
}

// prepare runs the load, clean and feature stages over the yearly extracts.
func prepare(ctx context.Context, logger *slog.Logger, dataDir string, years []int) (*dataset.Table, error) {
	loader := dataset.NewLoader(logger)
	result, err := loader.LoadYears(ctx, dataDir, years)
	if err != nil {
		return nil, err
	}
	cleaned, err := dataset.NewCleaner(logger).Clean(ctx, result.Table)
	if err != nil {
		return nil, err
	}
	return features.Build(cleaned)
}

func parseYears(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, nil
}

func orFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

func orInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}
