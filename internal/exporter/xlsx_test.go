package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/khkk24/projeto-how-final/internal/insights"
	"github.com/khkk24/projeto-how-final/internal/stats"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func TestXLSXWriter_WriteReport(t *testing.T) {
	paths := testPaths(t)
	w := NewXLSXWriter(paths)

	data := &ReportData{
		Yearly: []domain.YearlySummary{
			{Year: 2022, Accidents: 100, Deaths: 5, Injured: 40, People: 180},
			{Year: 2023, Accidents: 120, Deaths: 6, Injured: 50, People: 210, Variation: 20},
		},
		States: []stats.FrequencyEntry{
			{Value: "SP", Count: 120, Percent: 54.5},
			{Value: "MG", Count: 100, Percent: 45.5},
		},
		Causes: []stats.FrequencyEntry{
			{Value: "Falta de atencao", Count: 150, Percent: 68.2},
		},
		Severity: []stats.FrequencyEntry{
			{Value: domain.SeverityInjured, Count: 130, Percent: 59.1},
		},
		Correlation: &stats.CorrelationMatrix{
			Columns: []string{"hora", "pessoas"},
			Values:  [][]float64{{1, 0.3}, {0.3, 1}},
		},
		Insights: []insights.Insight{
			{Category: "temporal", Text: "Accidents rose 20% year over year."},
		},
	}

	require.NoError(t, w.WriteReport("report.xlsx", data))

	f, err := excelize.OpenFile(paths.ReportPath("report.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Yearly", "States", "Causes", "Severity", "Correlation", "Insights"} {
		assert.Contains(t, sheets, want)
	}
	assert.NotContains(t, sheets, "Sheet1")

	year, err := f.GetCellValue("Yearly", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2022", year)

	state, err := f.GetCellValue("States", "A2")
	require.NoError(t, err)
	assert.Equal(t, "SP", state)

	corr, err := f.GetCellValue("Correlation", "B1")
	require.NoError(t, err)
	assert.Equal(t, "hora", corr)
}

func TestXLSXWriter_EmptyFamiliesSkipped(t *testing.T) {
	paths := testPaths(t)
	w := NewXLSXWriter(paths)

	data := &ReportData{
		Yearly: []domain.YearlySummary{{Year: 2023, Accidents: 1}},
	}
	require.NoError(t, w.WriteReport("sparse.xlsx", data))

	f, err := excelize.OpenFile(paths.ReportPath("sparse.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Yearly")
	assert.NotContains(t, sheets, "States")
}
