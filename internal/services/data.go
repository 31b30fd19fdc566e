package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/files"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// newCleaner builds a cleaner with the configured null-drop threshold.
func newCleaner(cfg *config.Config, logger *slog.Logger) *dataset.Cleaner {
	c := dataset.NewCleaner(logger)
	if cfg.Data.DropNullPercent > 0 {
		c.DropNullFraction = float64(cfg.Data.DropNullPercent) / 100
	}
	return c
}

// DataService answers questions about the yearly extracts on disk and accepts
// uploaded CSVs.
type DataService struct {
	paths          *config.Paths
	discovery      *files.Discovery
	uploads        *files.Manager
	extracts       *files.Manager
	loader         *dataset.Loader
	cleaner        *dataset.Cleaner
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewDataService creates the data service.
func NewDataService(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		paths:          paths,
		discovery:      files.NewDiscovery(paths.DataDir),
		uploads:        files.NewManager(paths.UploadsDir),
		extracts:       files.NewManager(paths.DataDir),
		loader:         dataset.NewLoader(logger),
		cleaner:        newCleaner(cfg, logger),
		maxUploadBytes: cfg.Data.MaxUploadBytes,
		logger:         logger.With(slog.String("service", "data")),
	}
}

// ListYears returns the yearly extracts discovered in the data directory.
func (s *DataService) ListYears(ctx context.Context) ([]domain.YearFile, error) {
	found, err := s.discovery.FindYearFiles()
	if err != nil {
		return nil, fmt.Errorf("discovering year files: %w", err)
	}

	out := make([]domain.YearFile, 0, len(found))
	for _, f := range found {
		out = append(out, domain.YearFile{
			Year: f.Year,
			Path: f.Path,
			Name: f.Name,
			Size: f.Size,
		})
	}
	s.logger.InfoContext(ctx, "listed year files", slog.Int("count", len(out)))
	return out, nil
}

// DatasetProfile is the per-column and per-year overview of a loaded dataset.
type DatasetProfile struct {
	Years       []int                  `json:"years"`
	Rows        int                    `json:"rows"`
	SkippedRows int                    `json:"skipped_rows"`
	Columns     []domain.ColumnProfile `json:"columns"`
	Yearly      []domain.YearlySummary `json:"yearly"`
}

// Profile loads and cleans the requested years, then profiles the result.
// Empty years means every discovered extract.
func (s *DataService) Profile(ctx context.Context, years []int) (*DatasetProfile, error) {
	if len(years) == 0 {
		found, err := s.discovery.FindYearFiles()
		if err != nil {
			return nil, fmt.Errorf("discovering year files: %w", err)
		}
		for _, f := range found {
			years = append(years, f.Year)
		}
	}

	result, err := s.loader.LoadYears(ctx, s.paths.DataDir, years)
	if err != nil {
		return nil, err
	}
	cleaned, err := s.cleaner.Clean(ctx, result.Table)
	if err != nil {
		return nil, err
	}

	return &DatasetProfile{
		Years:       years,
		Rows:        cleaned.NumRows(),
		SkippedRows: result.SkippedRows,
		Columns:     dataset.Profile(cleaned),
		Yearly:      dataset.YearlySummaries(cleaned),
	}, nil
}

// SaveUpload stages an uploaded CSV, validates it against the required schema
// and installs it in the data directory as datatran{year}.csv so it joins
// discovery, profiling, analysis and training like any agency extract. The
// year comes from the file name when it follows the agency naming, otherwise
// from the dominant year in the data itself.
func (s *DataService) SaveUpload(ctx context.Context, name string, r io.Reader) (string, error) {
	staged, err := s.uploads.SaveUpload(name, r, s.maxUploadBytes)
	if err != nil {
		return "", err
	}

	// Reject files the loader cannot use; a bad upload should fail here,
	// not during a later analysis run.
	table, _, err := s.loader.LoadFile(ctx, staged)
	if err != nil {
		s.discardUpload(ctx, name)
		return "", err
	}

	year := files.YearOf(name)
	if year == 0 {
		year = s.dominantYear(ctx, table)
	}
	if year == 0 {
		s.discardUpload(ctx, name)
		return "", fmt.Errorf("could not determine the year of upload %q", name)
	}

	replaced := s.extracts.Exists(fmt.Sprintf("datatran%d.csv", year))
	dest := s.paths.YearFilePath(year)
	if err := s.uploads.Install(name, dest); err != nil {
		s.discardUpload(ctx, name)
		return "", err
	}

	s.logger.InfoContext(ctx, "upload accepted",
		slog.String("name", name),
		slog.Int("year", year),
		slog.Bool("replaced_existing", replaced),
		slog.String("path", dest))
	return dest, nil
}

// dominantYear cleans the uploaded table and returns the modal ano value.
func (s *DataService) dominantYear(ctx context.Context, t *dataset.Table) int {
	cleaned, err := s.cleaner.Clean(ctx, t)
	if err != nil || !cleaned.HasColumn(domain.ColYear) {
		return 0
	}
	v, ok := cleaned.Mode(domain.ColYear)
	if !ok {
		return 0
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return year
}

func (s *DataService) discardUpload(ctx context.Context, name string) {
	if err := s.uploads.Remove(name); err != nil {
		s.logger.WarnContext(ctx, "failed to remove rejected upload",
			slog.String("name", name),
			slog.String("error", err.Error()))
	}
}
