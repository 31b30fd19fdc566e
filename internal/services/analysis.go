package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/exporter"
	"github.com/khkk24/projeto-how-final/internal/insights"
	"github.com/khkk24/projeto-how-final/internal/operations"
	"github.com/khkk24/projeto-how-final/internal/stats"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// correlationColumns are the numeric columns the analysis correlates.
var correlationColumns = []string{
	domain.ColHour,
	domain.ColMonth,
	domain.ColWeekdayNum,
	domain.ColKilometer,
	domain.ColVehicles,
	domain.ColPeople,
	domain.ColDeaths,
	domain.ColInjured,
}

// AnalysisResult is the outcome of one full analysis run.
type AnalysisResult struct {
	OperationID string                  `json:"operation_id"`
	Years       []int                   `json:"years"`
	Rows        int                     `json:"rows"`
	SkippedRows int                     `json:"skipped_rows"`
	Columns     []domain.ColumnProfile  `json:"columns"`
	Yearly      []domain.YearlySummary  `json:"yearly"`
	States      []stats.FrequencyEntry  `json:"states"`
	Causes      []stats.FrequencyEntry  `json:"causes"`
	Severity    []stats.FrequencyEntry  `json:"severity"`
	Correlation *stats.CorrelationMatrix `json:"correlation,omitempty"`
	Report      *insights.Report        `json:"report"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// AnalysisService runs the load, clean, features, statistics and insights
// pipeline and exports the latest results.
type AnalysisService struct {
	cfg     *config.Config
	paths   *config.Paths
	manager *operations.Manager
	loader  *dataset.Loader
	cleaner *dataset.Cleaner
	gen     *insights.Generator
	csv     *exporter.CSVWriter
	xlsx    *exporter.XLSXWriter
	logger  *slog.Logger

	mu   sync.RWMutex
	last *AnalysisResult
}

// NewAnalysisService creates the analysis service.
func NewAnalysisService(cfg *config.Config, paths *config.Paths, manager *operations.Manager, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		cfg:     cfg,
		paths:   paths,
		manager: manager,
		loader:  dataset.NewLoader(logger),
		cleaner: newCleaner(cfg, logger),
		gen:     insights.NewGenerator(logger),
		csv:     exporter.NewCSVWriter(paths),
		xlsx:    exporter.NewXLSXWriter(paths),
		logger:  logger.With(slog.String("service", "analysis")),
	}
}

// Run executes the full pipeline over the requested years. Empty years fall
// back to the configured defaults.
func (s *AnalysisService) Run(ctx context.Context, years []int) (*AnalysisResult, error) {
	if len(years) == 0 {
		years = s.cfg.Data.DefaultYears
	}

	steps := []operations.Step{
		&operations.LoadStep{Loader: s.loader, DataDir: s.paths.DataDir, Years: years},
		&operations.CleanStep{Cleaner: s.cleaner},
		&operations.FeaturesStep{},
	}
	state, err := s.manager.Execute(ctx, steps)
	if err != nil {
		return nil, err
	}

	tableValue, _ := state.GetContext(operations.ContextKeyTable)
	table, ok := tableValue.(*dataset.Table)
	if !ok || table == nil {
		return nil, fmt.Errorf("pipeline produced no table")
	}
	skipped := 0
	if v, ok := state.GetContext(operations.ContextKeySkippedRows); ok {
		skipped, _ = v.(int)
	}

	report, err := s.gen.Generate(ctx, table)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		OperationID: state.ID,
		Years:       years,
		Rows:        table.NumRows(),
		SkippedRows: skipped,
		Columns:     dataset.Profile(table),
		Yearly:      dataset.YearlySummaries(table),
		Report:      report,
		GeneratedAt: time.Now().UTC(),
	}
	result.States, _ = stats.Frequency(table, domain.ColState, 0)
	result.Causes, _ = stats.Frequency(table, domain.ColCause, 0)
	result.Severity, _ = stats.Frequency(table, domain.ColSeverity, 0)

	if corr, err := stats.Correlation(table, presentColumns(table, correlationColumns)); err == nil {
		result.Correlation = corr
	} else {
		s.logger.WarnContext(ctx, "correlation skipped", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("operation_id", state.ID),
		slog.Int("rows", result.Rows))
	return result, nil
}

// Last returns the most recent analysis result, or nil.
func (s *AnalysisService) Last() *AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// ExportCSV writes the latest yearly summaries and frequency tables as CSV
// reports and returns the file paths.
func (s *AnalysisService) ExportCSV(ctx context.Context) ([]string, error) {
	result := s.Last()
	if result == nil {
		return nil, fmt.Errorf("no analysis results to export; run an analysis first")
	}

	var written []string

	yearlyRecords := make([][]string, 0, len(result.Yearly))
	for _, y := range result.Yearly {
		yearlyRecords = append(yearlyRecords, []string{
			fmt.Sprintf("%d", y.Year),
			fmt.Sprintf("%d", y.Accidents),
			fmt.Sprintf("%d", y.Deaths),
			fmt.Sprintf("%d", y.Injured),
			fmt.Sprintf("%d", y.People),
			fmt.Sprintf("%.2f", y.Variation),
		})
	}
	if err := s.csv.WriteCSV("yearly_summary.csv", exporter.WriteOptions{
		Headers:   []string{"year", "accidents", "deaths", "injured", "people", "variation_percent"},
		Records:   yearlyRecords,
		BOMPrefix: true,
	}); err != nil {
		return nil, err
	}
	written = append(written, s.paths.ReportPath("yearly_summary.csv"))

	for name, entries := range map[string][]stats.FrequencyEntry{
		"states.csv":   result.States,
		"causes.csv":   result.Causes,
		"severity.csv": result.Severity,
	} {
		records := make([][]string, 0, len(entries))
		for _, e := range entries {
			records = append(records, []string{e.Value, fmt.Sprintf("%d", e.Count), fmt.Sprintf("%.2f", e.Percent)})
		}
		if err := s.csv.WriteCSV(name, exporter.WriteOptions{
			Headers:   []string{"value", "count", "percent"},
			Records:   records,
			BOMPrefix: true,
		}); err != nil {
			return nil, err
		}
		written = append(written, s.paths.ReportPath(name))
	}

	s.logger.InfoContext(ctx, "csv export completed", slog.Int("files", len(written)))
	return written, nil
}

// ExportXLSX writes the latest results as one workbook and returns its path.
func (s *AnalysisService) ExportXLSX(ctx context.Context) (string, error) {
	result := s.Last()
	if result == nil {
		return "", fmt.Errorf("no analysis results to export; run an analysis first")
	}

	data := &exporter.ReportData{
		Yearly:      result.Yearly,
		States:      result.States,
		Causes:      result.Causes,
		Severity:    result.Severity,
		Correlation: result.Correlation,
	}
	if result.Report != nil {
		data.Insights = result.Report.Insights
	}

	name := "analysis_report.xlsx"
	if err := s.xlsx.WriteReport(name, data); err != nil {
		return "", err
	}

	path := s.paths.ReportPath(name)
	s.logger.InfoContext(ctx, "xlsx export completed", slog.String("path", path))
	return path, nil
}

func presentColumns(t *dataset.Table, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
