package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// ErrNoDataFiles is returned when none of the requested yearly extracts exist.
var ErrNoDataFiles = errors.New("no data files found for the requested years")

// SchemaError reports required columns missing from an extract.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("file %s is missing required columns: %v", e.File, e.Missing)
}

// LoadResult carries a loaded table together with per-file accounting.
type LoadResult struct {
	Table       *Table
	Files       []domain.YearFile
	SkippedRows int
}

// Loader reads yearly accident extracts into Tables. The agency publishes
// CSV files with varying encodings (UTF-8 or Latin-1) and separators, so
// loading detects both instead of assuming the documented format.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader with the given logger.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset.loader"))}
}

// LoadYears loads the extracts for the requested years from dir, tags every
// row with its source year in the "ano" column and concatenates the result.
// Years without a file are skipped with a warning; if no file matched at all
// the error is ErrNoDataFiles.
func (l *Loader) LoadYears(ctx context.Context, dir string, years []int) (*LoadResult, error) {
	combined := (*Table)(nil)
	result := &LoadResult{}

	for _, year := range years {
		path := fmt.Sprintf("%s/datatran%d.csv", dir, year)
		if _, err := os.Stat(path); err != nil {
			l.logger.WarnContext(ctx, "year file not found, skipping",
				slog.Int("year", year),
				slog.String("path", path))
			continue
		}

		table, skipped, err := l.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}

		// Tag rows with their source year. The cleaner re-derives "ano" from
		// the date column later; the tag covers extracts with broken dates.
		yearStr := strconv.Itoa(year)
		tags := make([]string, table.NumRows())
		for i := range tags {
			tags[i] = yearStr
		}
		table.AddColumn(domain.ColYear, tags)

		info, _ := os.Stat(path)
		result.Files = append(result.Files, domain.YearFile{
			Year: year,
			Path: path,
			Name: fmt.Sprintf("datatran%d.csv", year),
			Size: info.Size(),
			Rows: table.NumRows(),
		})
		result.SkippedRows += skipped

		l.logger.InfoContext(ctx, "year file loaded",
			slog.Int("year", year),
			slog.Int("rows", table.NumRows()),
			slog.Int("skipped_rows", skipped))

		if combined == nil {
			combined = table
		} else {
			combined.AppendTable(table)
		}
	}

	if combined == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDataFiles, years)
	}

	result.Table = combined
	l.logger.InfoContext(ctx, "years combined",
		slog.Int("files", len(result.Files)),
		slog.Int("total_rows", combined.NumRows()))
	return result, nil
}

// LoadFile reads one CSV extract, validating that the required accident
// columns are present. It returns the table and the count of malformed rows
// that were skipped.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Table, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := decodeText(raw)
	sep := detectSeparator(text)

	table, skipped, err := parseCSV(text, sep)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if missing := missingRequiredColumns(table); len(missing) > 0 {
		return nil, 0, &SchemaError{File: path, Missing: missing}
	}

	return table, skipped, nil
}

// missingRequiredColumns checks the expected schema after header normalization.
func missingRequiredColumns(t *Table) []string {
	var missing []string
	for _, col := range domain.RequiredColumns() {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// decodeText converts the file bytes to UTF-8, falling back to Latin-1 when
// the content is not valid UTF-8 (older extracts are published that way).
func decodeText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// detectSeparator picks the separator with the most occurrences in the header
// line. The agency has shipped ';' and ',' variants over the years.
func detectSeparator(text string) rune {
	header := text
	if i := bytes.IndexByte([]byte(text), '\n'); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ';', 0
	for _, cand := range []rune{';', ',', '\t', '|'} {
		count := 0
		for _, r := range header {
			if r == cand {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = cand, count
		}
	}
	return best
}

// parseCSV parses the decoded text, normalizing headers and skipping rows
// whose field count does not match the header. Skipped rows are counted so
// callers can reconcile row totals.
func parseCSV(text string, sep rune) (*Table, int, error) {
	reader := csv.NewReader(bytes.NewReader([]byte(text)))
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = NormalizeColumnName(h)
	}
	table := NewTable(cols)

	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) != len(cols) {
			skipped++
			continue
		}
		for i, cell := range record {
			if IsMissing(cell) {
				record[i] = Missing
			}
		}
		if err := table.AppendRow(record); err != nil {
			skipped++
		}
	}
	return table, skipped, nil
}
