package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/ml"
	v1 "github.com/khkk24/projeto-how-final/pkg/contracts/api/v1"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func predictRows() []map[string]string {
	return []map[string]string{{
		"uf":                     "SP",
		"tipo_acidente":          "Colisao frontal",
		"causa_acidente":         "Falta de atencao",
		"tipo_pista":             "Simples",
		"tracado_via":            "Reta",
		"condicao_metereologica": "Ceu Claro",
		"fase_dia":               "Pleno dia",
		"sentido_via":            "Crescente",
		"dia_semana":             "segunda-feira",
		"hora":                   "19",
		"mes":                    "3",
		"ano":                    "2023",
		"dia_semana_num":         "0",
		"km":                     "120.5",
		"veiculos":               "2",
		"pessoas":                "3",
	}}
}

func TestModelService_TrainAndPredict(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewModelService(cfg, paths, manager, nil)

	assert.False(t, s.Fitted())
	_, err := s.Predict(testContext(), v1.PredictRequest{Rows: predictRows()})
	assert.ErrorIs(t, err, ml.ErrModelNotFitted)

	summary, err := s.Train(testContext(), v1.TrainRequest{Trees: 10})
	require.NoError(t, err)
	require.True(t, s.Fitted())

	assert.Equal(t, domain.ModelRandomForest, summary.ModelType)
	assert.Greater(t, summary.Accuracy, 0.0)
	assert.Len(t, summary.Classes, 3)

	preds, err := s.Predict(testContext(), v1.PredictRequest{Rows: predictRows()})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Contains(t, domain.SeverityClasses(), preds[0].Label)
	assert.Greater(t, preds[0].Confidence, 0.0)
}

func TestModelService_GradientBoosting(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewModelService(cfg, paths, manager, nil)

	summary, err := s.Train(testContext(), v1.TrainRequest{
		ModelType: domain.ModelGradientBoosting,
		Trees:     10,
		MaxDepth:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelGradientBoosting, summary.ModelType)
}

func TestModelService_ArtifactSurvivesRestart(t *testing.T) {
	cfg, paths, manager := testEnv(t)

	first := NewModelService(cfg, paths, manager, nil)
	_, err := first.Train(testContext(), v1.TrainRequest{Trees: 10})
	require.NoError(t, err)

	want, err := first.Predict(testContext(), v1.PredictRequest{Rows: predictRows()})
	require.NoError(t, err)

	// A fresh service over the same paths picks the bundle up from disk.
	second := NewModelService(cfg, paths, manager, nil)
	require.True(t, second.Fitted())

	got, err := second.Predict(testContext(), v1.PredictRequest{Rows: predictRows()})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestModelService_Status(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewModelService(cfg, paths, manager, nil)

	_, err := s.Status(testContext())
	assert.ErrorIs(t, err, ml.ErrModelNotFitted)

	_, err = s.Train(testContext(), v1.TrainRequest{Trees: 10})
	require.NoError(t, err)

	info, err := s.Status(testContext())
	require.NoError(t, err)
	assert.Equal(t, domain.ModelRandomForest, info.ModelType)
	assert.ElementsMatch(t, domain.SeverityClasses(), info.Classes)
	assert.False(t, info.TrainedAt.IsZero())
}

func TestModelService_TrainMissingYears(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewModelService(cfg, paths, manager, nil)

	_, err := s.Train(testContext(), v1.TrainRequest{Years: []int{1999}})
	require.Error(t, err)
	assert.False(t, s.Fitted())
}
