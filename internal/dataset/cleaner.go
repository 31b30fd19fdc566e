package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// CategoricalFill is the sentinel written into missing categorical cells.
const CategoricalFill = "nao_informado"

// Brazilian territory bounds used to validate coordinates. Values outside
// are recorded as missing and then imputed like any other numeric gap.
const (
	minLatitude  = -35.0
	maxLatitude  = 5.0
	minLongitude = -75.0
	maxLongitude = -30.0
)

var spaceRun = regexp.MustCompile(`\s+`)

// dateLayouts are the date formats observed across yearly extracts, day first.
var dateLayouts = []string{"2006-01-02", "02/01/2006", "02/01/06", "2006/01/02"}

// Cleaner applies the deterministic cleaning pipeline to a raw extract:
// column name normalization, date parsing and temporal derivations,
// coordinate validation, missing-value imputation and deduplication.
//
// Cleaning is idempotent: running Clean on already-cleaned data returns an
// equal table. Coordinate validation runs before imputation so that imputed
// coordinates are always in bounds and stable across repeated runs.
type Cleaner struct {
	// DropNullFraction is the null share above which a column is dropped
	// entirely instead of imputed.
	DropNullFraction float64

	logger *slog.Logger
}

// NewCleaner creates a cleaner with the default 95% drop threshold.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		DropNullFraction: 0.95,
		logger:           logger.With(slog.String("component", "dataset.cleaner")),
	}
}

// Clean runs the full cleaning pipeline and returns a new table.
func (c *Cleaner) Clean(ctx context.Context, t *Table) (*Table, error) {
	if t == nil || t.NumRows() == 0 {
		return nil, fmt.Errorf("cannot clean an empty table")
	}

	out := t.Clone()

	c.normalizeColumns(out)
	c.processDates(out)
	c.fixCoordinates(out)
	dropped := c.handleMissing(out)

	before := out.NumRows()
	out = out.Dedupe()
	removed := before - out.NumRows()

	c.logger.InfoContext(ctx, "cleaning completed",
		slog.Int("rows", out.NumRows()),
		slog.Int("duplicates_removed", removed),
		slog.Int("columns_dropped", dropped))

	return out, nil
}

// NormalizeColumnName standardizes a raw header: trimmed, lowered, accents
// stripped, whitespace collapsed to underscores.
func NormalizeColumnName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = removeDiacritics(s)
	s = spaceRun.ReplaceAllString(s, "_")
	return s
}

// removeDiacritics decomposes to NFKD and keeps only ASCII runes.
func removeDiacritics(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Cleaner) normalizeColumns(t *Table) {
	for _, col := range t.Columns() {
		normalized := NormalizeColumnName(col)
		if normalized != col {
			t.RenameColumn(col, normalized)
		}
	}
}

// processDates parses the date column, canonicalizes it to 2006-01-02 form,
// combines it with the time column and derives the temporal fields the
// feature builder and the classifier depend on.
func (c *Cleaner) processDates(t *Table) {
	if !t.HasColumn(domain.ColDate) {
		return
	}

	n := t.NumRows()
	dates := make([]string, n)
	combined := make([]string, n)
	years := make([]string, n)
	months := make([]string, n)
	days := make([]string, n)
	hours := make([]string, n)
	weekdays := make([]string, n)

	hasTime := t.HasColumn(domain.ColTime)

	for r := 0; r < n; r++ {
		parsed, ok := parseDate(t.Cell(r, domain.ColDate))
		if !ok {
			dates[r] = Missing
			continue
		}
		dates[r] = parsed.Format("2006-01-02")
		years[r] = strconv.Itoa(parsed.Year())
		months[r] = strconv.Itoa(int(parsed.Month()))
		days[r] = strconv.Itoa(parsed.Day())
		// Monday=0 .. Sunday=6, so the weekend test is weekday >= 5.
		weekdays[r] = strconv.Itoa((int(parsed.Weekday()) + 6) % 7)

		if hasTime {
			raw := t.Cell(r, domain.ColTime)
			if hour, ok := parseHour(raw); ok {
				hours[r] = strconv.Itoa(hour)
				combined[r] = dates[r] + " " + canonicalTime(raw)
			}
		}
	}

	t.AddColumn(domain.ColDate, dates)
	t.AddColumn(domain.ColYear, years)
	t.AddColumn(domain.ColMonth, months)
	t.AddColumn(domain.ColDay, days)
	t.AddColumn(domain.ColWeekdayNum, weekdays)
	if hasTime {
		t.AddColumn(domain.ColHour, hours)
		t.AddColumn("data_hora_completa", combined)
	}
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == Missing {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// parseHour extracts the hour from "HH:MM:SS" or "HH:MM" cells.
func parseHour(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == Missing {
		return 0, false
	}
	parts := strings.Split(s, ":")
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// canonicalTime renders a time cell as HH:MM:SS.
func canonicalTime(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ":")
	for len(parts) < 3 {
		parts = append(parts, "00")
	}
	for i, p := range parts[:3] {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts[:3], ":")
}

// fixCoordinates converts comma decimals and blanks out-of-range coordinates.
func (c *Cleaner) fixCoordinates(t *Table) {
	fix := func(col string, min, max float64) {
		if !t.HasColumn(col) {
			return
		}
		n := t.NumRows()
		values := make([]string, n)
		for r := 0; r < n; r++ {
			v, ok := ParseNumber(t.Cell(r, col))
			if !ok || v < min || v > max {
				values[r] = Missing
				continue
			}
			values[r] = FormatNumber(v)
		}
		t.AddColumn(col, values)
	}
	fix(domain.ColLatitude, minLatitude, maxLatitude)
	fix(domain.ColLongitude, minLongitude, maxLongitude)
}

// handleMissing drops near-empty columns and imputes the rest: numeric
// columns with the median, categorical columns with the CategoricalFill
// sentinel. Returns the number of dropped columns.
func (c *Cleaner) handleMissing(t *Table) int {
	n := t.NumRows()
	if n == 0 {
		return 0
	}

	var toDrop []string
	for _, col := range t.Columns() {
		nulls := 0
		for r := 0; r < n; r++ {
			if IsMissing(t.Cell(r, col)) {
				nulls++
			}
		}
		if float64(nulls)/float64(n) > c.DropNullFraction {
			toDrop = append(toDrop, col)
		}
	}
	if len(toDrop) > 0 {
		t.DropColumns(toDrop...)
	}

	for _, col := range t.Columns() {
		hasNull := false
		for r := 0; r < n; r++ {
			if IsMissing(t.Cell(r, col)) {
				hasNull = true
				break
			}
		}
		if !hasNull {
			continue
		}

		if t.IsNumericColumn(col) {
			median, ok := t.Median(col)
			if !ok {
				continue
			}
			fill := FormatNumber(median)
			for r := 0; r < n; r++ {
				if IsMissing(t.Cell(r, col)) {
					t.SetCell(r, col, fill)
				}
			}
		} else {
			for r := 0; r < n; r++ {
				if IsMissing(t.Cell(r, col)) {
					t.SetCell(r, col, CategoricalFill)
				}
			}
		}
	}

	return len(toDrop)
}
