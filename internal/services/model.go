package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/features"
	"github.com/khkk24/projeto-how-final/internal/ml"
	"github.com/khkk24/projeto-how-final/internal/operations"
	v1 "github.com/khkk24/projeto-how-final/pkg/contracts/api/v1"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// ModelService owns the serving artifact bundle. Training builds a fresh
// classifier and the serving one is swapped only after the saved bundle loads
// back successfully, so a failed save can never leave a half-updated model
// serving predictions.
type ModelService struct {
	cfg     *config.Config
	paths   *config.Paths
	manager *operations.Manager
	loader  *dataset.Loader
	cleaner *dataset.Cleaner
	logger  *slog.Logger

	mu      sync.RWMutex
	serving *ml.SeverityClassifier
}

// NewModelService creates the model service and loads a previously saved
// bundle when one exists.
func NewModelService(cfg *config.Config, paths *config.Paths, manager *operations.Manager, logger *slog.Logger) *ModelService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ModelService{
		cfg:     cfg,
		paths:   paths,
		manager: manager,
		loader:  dataset.NewLoader(logger),
		cleaner: newCleaner(cfg, logger),
		logger:  logger.With(slog.String("service", "model")),
	}

	if _, err := os.Stat(paths.CurrentModelDir); err == nil {
		classifier := ml.NewSeverityClassifier(logger)
		if err := classifier.Load(paths.CurrentModelDir); err != nil {
			s.logger.Warn("existing model bundle failed to load",
				slog.String("dir", paths.CurrentModelDir),
				slog.String("error", err.Error()))
		} else {
			s.serving = classifier
			s.logger.Info("model bundle loaded", slog.String("dir", paths.CurrentModelDir))
		}
	}
	return s
}

// Train runs the full training pipeline and swaps the serving artifact.
func (s *ModelService) Train(ctx context.Context, req v1.TrainRequest) (*domain.TrainSummary, error) {
	years := req.Years
	if len(years) == 0 {
		years = s.cfg.Data.DefaultYears
	}
	opts := s.trainOptions(req)

	classifier := ml.NewSeverityClassifier(s.logger)
	steps := []operations.Step{
		&operations.LoadStep{Loader: s.loader, DataDir: s.paths.DataDir, Years: years},
		&operations.CleanStep{Cleaner: s.cleaner},
		&operations.FeaturesStep{},
		&operations.TrainStep{Classifier: classifier, Options: opts},
	}
	state, err := s.manager.Execute(ctx, steps)
	if err != nil {
		return nil, err
	}

	summaryValue, _ := state.GetContext(operations.ContextKeyTrainSummary)
	summary, ok := summaryValue.(*domain.TrainSummary)
	if !ok || summary == nil {
		return nil, fmt.Errorf("training produced no summary")
	}

	if err := classifier.Save(s.paths.CurrentModelDir); err != nil {
		return nil, fmt.Errorf("saving model bundle: %w", err)
	}

	// Serve from the persisted state, not the in-memory one, so what answers
	// predictions is exactly what survives a restart.
	reloaded := ml.NewSeverityClassifier(s.logger)
	if err := reloaded.Load(s.paths.CurrentModelDir); err != nil {
		return nil, fmt.Errorf("reloading saved bundle: %w", err)
	}

	s.mu.Lock()
	s.serving = reloaded
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "model trained and swapped",
		slog.String("model_type", summary.ModelType),
		slog.Float64("accuracy", summary.Accuracy))
	return summary, nil
}

// Predict scores request rows with the serving artifact. Derived temporal
// features are built on the fly when the rows carry the cleaned date columns.
func (s *ModelService) Predict(ctx context.Context, req v1.PredictRequest) ([]domain.Prediction, error) {
	s.mu.RLock()
	classifier := s.serving
	s.mu.RUnlock()

	if classifier == nil {
		return nil, ml.ErrModelNotFitted
	}

	table := tableFromRows(req.Rows)
	if table.HasColumn(domain.ColHour) && table.HasColumn(domain.ColWeekdayNum) {
		built, err := features.Build(table)
		if err == nil {
			table = built
		}
	}

	return classifier.Predict(ctx, table)
}

// Status describes the serving artifact.
func (s *ModelService) Status(_ context.Context) (domain.ArtifactInfo, error) {
	s.mu.RLock()
	classifier := s.serving
	s.mu.RUnlock()

	if classifier == nil {
		return domain.ArtifactInfo{}, ml.ErrModelNotFitted
	}
	return classifier.Info()
}

// Fitted reports whether a serving artifact is available.
func (s *ModelService) Fitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serving != nil && s.serving.Fitted()
}

func (s *ModelService) trainOptions(req v1.TrainRequest) ml.TrainOptions {
	opts := ml.TrainOptions{
		ModelType:    req.ModelType,
		TestSize:     req.TestSize,
		Trees:        req.Trees,
		MaxDepth:     req.MaxDepth,
		MinSplit:     req.MinSplit,
		LearningRate: req.LearnRate,
		Seed:         req.RandomSeed,
	}
	if opts.ModelType == "" {
		opts.ModelType = s.cfg.Model.DefaultType
	}
	if opts.TestSize == 0 {
		opts.TestSize = s.cfg.Model.TestSize
	}
	if opts.Seed == 0 {
		opts.Seed = s.cfg.Model.RandomSeed
	}
	return opts
}

// tableFromRows builds a table from request rows. Columns are the union of
// every row's keys, sorted by name; absent cells stay empty.
func tableFromRows(rows []map[string]string) *dataset.Table {
	var cols []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	// Map iteration order is random; keep the table deterministic.
	sort.Strings(cols)

	t := dataset.NewTable(cols)
	for _, row := range rows {
		values := make([]string, len(cols))
		for j, c := range cols {
			values[j] = row[c]
		}
		t.AppendRow(values)
	}
	return t
}
