package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func TestLoadStep_Validate(t *testing.T) {
	state := NewOperationState("op")

	step := &LoadStep{}
	assert.Error(t, step.Validate(state))

	step = &LoadStep{Loader: dataset.NewLoader(nil)}
	assert.Error(t, step.Validate(state))

	step = &LoadStep{Loader: dataset.NewLoader(nil), Years: []int{2023}}
	assert.NoError(t, step.Validate(state))
}

func TestCleanStep_RequiresTable(t *testing.T) {
	step := &CleanStep{Cleaner: dataset.NewCleaner(nil)}
	assert.Error(t, step.Validate(NewOperationState("op")))
}

func TestFeaturesStep_Execute(t *testing.T) {
	tbl := dataset.NewTable([]string{domain.ColHour, domain.ColWeekdayNum})
	require.NoError(t, tbl.AppendRow([]string{"19", "5"}))
	require.NoError(t, tbl.AppendRow([]string{"9", "2"}))

	state := NewOperationState("op")
	state.SetContext(ContextKeyTable, tbl)
	state.AddStep(NewStepState(StepIDFeatures, "Feature Engineering"))

	step := &FeaturesStep{}
	require.NoError(t, step.Validate(state))
	require.NoError(t, step.Execute(context.Background(), state))

	built := contextTable(state)
	require.True(t, built.HasColumn(domain.ColIsNight))
	assert.Equal(t, "1", built.Cell(0, domain.ColIsNight))
	assert.Equal(t, "1", built.Cell(0, domain.ColIsWeekend))
	assert.Equal(t, "0", built.Cell(1, domain.ColIsNight))
	assert.Equal(t, "0", built.Cell(1, domain.ColIsWeekend))
}

func TestFeaturesStep_ValidateRejectsUncleanedTable(t *testing.T) {
	tbl := dataset.NewTable([]string{domain.ColState})
	require.NoError(t, tbl.AppendRow([]string{"SP"}))

	state := NewOperationState("op")
	state.SetContext(ContextKeyTable, tbl)

	step := &FeaturesStep{}
	assert.Error(t, step.Validate(state))
}
