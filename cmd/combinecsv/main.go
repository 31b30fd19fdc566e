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
	"github.com/khkk24/projeto-how-final/internal/exporter"
	"github.com/khkk24/projeto-how-final/internal/features"
	"github.com/khkk24/projeto-how-final/internal/infrastructure"
)

func main() {
	yearsFlag := flag.String("years", "", "comma-separated years to merge (default: configured years)")
	outFile := flag.String("out", "", "output CSV path (default: reports/accidents_combined.csv)")
	withFeatures := flag.Bool("features", true, "add the derived temporal feature columns")
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
	if *outFile == "" {
		*outFile = paths.CombinedDataCSV
	}

	years := cfg.Data.DefaultYears
	if *yearsFlag != "" {
		years = nil
		for _, p := range strings.Split(*yearsFlag, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				logger.Error("invalid --years", slog.String("error", err.Error()))
				os.Exit(1)
			}
			years = append(years, year)
		}
	}

	ctx := context.Background()
	result, err := dataset.NewLoader(logger).LoadYears(ctx, paths.DataDir, years)
	if err != nil {
		logger.Error("failed to load yearly extracts", slog.String("error", err.Error()))
		os.Exit(1)
	}
	table, err := dataset.NewCleaner(logger).Clean(ctx, result.Table)
	if err != nil {
		logger.Error("failed to clean dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *withFeatures {
		table, err = features.Build(table)
		if err != nil {
			logger.Error("failed to build features", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := exporter.NewCSVWriter(paths).WriteTable(*outFile, table); err != nil {
		logger.Error("failed to write combined CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("combined %d files into %s (%d rows, %d skipped)\n",
		len(result.Files), *outFile, table.NumRows(), result.SkippedRows)
}
