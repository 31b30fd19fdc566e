package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisService_Run(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewAnalysisService(cfg, paths, manager, nil)

	result, err := s.Run(testContext(), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{2022, 2023}, result.Years)
	assert.Equal(t, 210, result.Rows)
	assert.NotEmpty(t, result.OperationID)

	require.Len(t, result.Yearly, 2)
	assert.InDelta(t, 33.3, result.Yearly[1].Variation, 0.1)

	// SP holds 2 of every 5 fixture rows, strictly ahead of the other states.
	require.NotEmpty(t, result.States)
	assert.Equal(t, "SP", result.States[0].Value)
	assert.Equal(t, 84, result.States[0].Count)

	require.NotNil(t, result.Report)
	assert.Equal(t, 210, result.Report.TotalAccidents)

	require.NotNil(t, result.Correlation)
	assert.Contains(t, result.Correlation.Columns, "hora")

	// The run is cached for export.
	assert.Same(t, result, s.Last())
}

func TestAnalysisService_RunMissingYears(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewAnalysisService(cfg, paths, manager, nil)

	_, err := s.Run(testContext(), []int{1999})
	assert.Error(t, err)
	assert.Nil(t, s.Last())
}

func TestAnalysisService_ExportCSV(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewAnalysisService(cfg, paths, manager, nil)

	_, err := s.ExportCSV(testContext())
	require.Error(t, err, "export before any run must fail")

	_, err = s.Run(testContext(), nil)
	require.NoError(t, err)

	written, err := s.ExportCSV(testContext())
	require.NoError(t, err)
	require.Len(t, written, 4)

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestAnalysisService_ExportXLSX(t *testing.T) {
	cfg, paths, manager := testEnv(t)
	s := NewAnalysisService(cfg, paths, manager, nil)

	_, err := s.Run(testContext(), nil)
	require.NoError(t, err)

	path, err := s.ExportXLSX(testContext())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
