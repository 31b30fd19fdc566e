package operations

import (
	"context"
	"fmt"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/features"
	"github.com/khkk24/projeto-how-final/internal/ml"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Step identifiers.
const (
	StepIDLoad     = "load"
	StepIDClean    = "clean"
	StepIDFeatures = "features"
	StepIDTrain    = "train"
)

// LoadStep reads the yearly extracts into one table.
type LoadStep struct {
	Loader  *dataset.Loader
	DataDir string
	Years   []int
}

func (s *LoadStep) ID() string   { return StepIDLoad }
func (s *LoadStep) Name() string { return "Data Loading" }

func (s *LoadStep) Validate(_ *OperationState) error {
	if s.Loader == nil {
		return fmt.Errorf("no loader configured")
	}
	if len(s.Years) == 0 {
		return fmt.Errorf("no years requested")
	}
	return nil
}

func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	result, err := s.Loader.LoadYears(ctx, s.DataDir, s.Years)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyYears, s.Years)
	state.SetContext(ContextKeyTable, result.Table)
	state.SetContext(ContextKeyFiles, result.Files)
	state.SetContext(ContextKeySkippedRows, result.SkippedRows)

	state.Step(s.ID()).UpdateProgress(100,
		fmt.Sprintf("loaded %d rows from %d files", result.Table.NumRows(), len(result.Files)))
	return nil
}

// CleanStep normalizes, deduplicates and imputes the loaded table.
type CleanStep struct {
	Cleaner *dataset.Cleaner
}

func (s *CleanStep) ID() string   { return StepIDClean }
func (s *CleanStep) Name() string { return "Data Cleaning" }

func (s *CleanStep) Validate(state *OperationState) error {
	return requireTable(state)
}

func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	table := contextTable(state)
	state.SetContext(ContextKeyRowsBefore, table.NumRows())

	cleaned, err := s.Cleaner.Clean(ctx, table)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTable, cleaned)
	state.SetContext(ContextKeyRowsAfter, cleaned.NumRows())

	state.Step(s.ID()).UpdateProgress(100,
		fmt.Sprintf("cleaned: %d rows remain of %d", cleaned.NumRows(), table.NumRows()))
	return nil
}

// FeaturesStep derives the temporal model features.
type FeaturesStep struct{}

func (s *FeaturesStep) ID() string   { return StepIDFeatures }
func (s *FeaturesStep) Name() string { return "Feature Engineering" }

func (s *FeaturesStep) Validate(state *OperationState) error {
	if err := requireTable(state); err != nil {
		return err
	}
	table := contextTable(state)
	if !table.HasColumn(domain.ColHour) || !table.HasColumn(domain.ColWeekdayNum) {
		return fmt.Errorf("table is not cleaned: missing derived date columns")
	}
	return nil
}

func (s *FeaturesStep) Execute(_ context.Context, state *OperationState) error {
	table := contextTable(state)
	built, err := features.Build(table)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTable, built)
	return nil
}

// TrainStep fits the severity classifier on the prepared table.
type TrainStep struct {
	Classifier *ml.SeverityClassifier
	Options    ml.TrainOptions
}

func (s *TrainStep) ID() string   { return StepIDTrain }
func (s *TrainStep) Name() string { return "Model Training" }

func (s *TrainStep) Validate(state *OperationState) error {
	if s.Classifier == nil {
		return fmt.Errorf("no classifier configured")
	}
	return requireTable(state)
}

func (s *TrainStep) Execute(ctx context.Context, state *OperationState) error {
	summary, err := s.Classifier.Train(ctx, contextTable(state), s.Options)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTrainSummary, summary)

	state.Step(s.ID()).UpdateProgress(100,
		fmt.Sprintf("%s trained, accuracy %.3f", summary.ModelType, summary.Accuracy))
	return nil
}

func requireTable(state *OperationState) error {
	if _, ok := state.GetContext(ContextKeyTable); !ok {
		return fmt.Errorf("no table in operation context")
	}
	return nil
}

func contextTable(state *OperationState) *dataset.Table {
	v, _ := state.GetContext(ContextKeyTable)
	t, _ := v.(*dataset.Table)
	return t
}
