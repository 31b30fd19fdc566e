package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/insights"
	"github.com/khkk24/projeto-how-final/internal/stats"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// ReportData bundles the analysis results that go into a workbook, one sheet
// per family.
type ReportData struct {
	Yearly      []domain.YearlySummary
	States      []stats.FrequencyEntry
	Causes      []stats.FrequencyEntry
	Severity    []stats.FrequencyEntry
	Correlation *stats.CorrelationMatrix
	Insights    []insights.Insight
}

// XLSXWriter writes analysis results as an Excel workbook.
type XLSXWriter struct {
	paths *config.Paths
}

// NewXLSXWriter creates an XLSX writer rooted at the configured report paths.
func NewXLSXWriter(paths *config.Paths) *XLSXWriter {
	return &XLSXWriter{paths: paths}
}

// WriteReport writes the workbook. Relative paths resolve into the reports
// directory.
func (w *XLSXWriter) WriteReport(filePath string, data *ReportData) error {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = w.paths.ReportPath(fullPath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeYearly(f, data.Yearly); err != nil {
		return err
	}
	if err := w.writeFrequency(f, "States", data.States); err != nil {
		return err
	}
	if err := w.writeFrequency(f, "Causes", data.Causes); err != nil {
		return err
	}
	if err := w.writeFrequency(f, "Severity", data.Severity); err != nil {
		return err
	}
	if err := w.writeCorrelation(f, data.Correlation); err != nil {
		return err
	}
	if err := w.writeInsights(f, data.Insights); err != nil {
		return err
	}

	// The default sheet stays empty once the real ones exist.
	if f.SheetCount > 1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeYearly(f *excelize.File, yearly []domain.YearlySummary) error {
	if len(yearly) == 0 {
		return nil
	}
	sheet := "Yearly"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	header := []any{"year", "accidents", "deaths", "injured", "people", "variation_percent"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, s := range yearly {
		row := []any{s.Year, s.Accidents, s.Deaths, s.Injured, s.People, s.Variation}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeFrequency(f *excelize.File, sheet string, entries []stats.FrequencyEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	header := []any{"value", "count", "percent"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, e := range entries {
		row := []any{e.Value, e.Count, e.Percent}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeCorrelation(f *excelize.File, m *stats.CorrelationMatrix) error {
	if m == nil || len(m.Columns) == 0 {
		return nil
	}
	sheet := "Correlation"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	header := make([]any, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, c := range m.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, col := range m.Columns {
		row := make([]any, 0, len(m.Columns)+1)
		row = append(row, col)
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (w *XLSXWriter) writeInsights(f *excelize.File, list []insights.Insight) error {
	if len(list) == 0 {
		return nil
	}
	sheet := "Insights"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}
	header := []any{"category", "text"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, in := range list {
		row := []any{in.Category, in.Text}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
