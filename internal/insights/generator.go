package insights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/internal/stats"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Insight is one finding in a generated report.
type Insight struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Report is the automatic textual summary of a cleaned dataset.
type Report struct {
	GeneratedAt    time.Time `json:"generated_at"`
	TotalAccidents int       `json:"total_accidents"`
	TotalDeaths    int       `json:"total_deaths"`
	MortalityRate  float64   `json:"mortality_rate_percent"`
	Insights       []Insight `json:"insights"`
}

// Render flattens the report into plain text, one insight per line.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Accident analysis report, generated %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total accidents: %d, total deaths: %d (mortality %.2f%%)\n", r.TotalAccidents, r.TotalDeaths, r.MortalityRate)
	for _, in := range r.Insights {
		fmt.Fprintf(&b, "[%s] %s\n", in.Category, in.Text)
	}
	return b.String()
}

// humanFactorKeywords mark causes rooted in driver behavior; everything else
// counts toward road and environment conditions.
var humanFactorKeywords = []string{
	"alcool", "álcool", "atencao", "atenção", "velocidade", "sono", "dormindo",
	"obediencia", "obediência", "distancia", "distância", "celular",
	"ultrapassagem", "reacao", "reação",
}

// Generator produces the textual report.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator returns a report generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger.With(slog.String("component", "insights"))}
}

// Generate builds the report from a cleaned, feature-built table.
func (g *Generator) Generate(ctx context.Context, t *dataset.Table) (*Report, error) {
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("cannot generate insights from an empty dataset")
	}

	report := &Report{
		GeneratedAt:    time.Now().UTC(),
		TotalAccidents: t.NumRows(),
	}
	report.TotalDeaths = sumIntColumn(t, domain.ColDeaths)
	if report.TotalAccidents > 0 {
		report.MortalityRate = float64(report.TotalDeaths) / float64(report.TotalAccidents) * 100
	}

	report.Insights = append(report.Insights, g.temporal(t)...)
	report.Insights = append(report.Insights, g.geographic(t)...)
	report.Insights = append(report.Insights, g.causes(t)...)
	report.Insights = append(report.Insights, g.severity(t)...)
	report.Insights = append(report.Insights, g.timing(t)...)

	g.logger.InfoContext(ctx, "insight report generated",
		slog.Int("rows", t.NumRows()),
		slog.Int("insights", len(report.Insights)))
	return report, nil
}

// temporal covers the yearly evolution: endpoints, peak year and trend.
func (g *Generator) temporal(t *dataset.Table) []Insight {
	summaries := dataset.YearlySummaries(t)
	if len(summaries) < 2 {
		return nil
	}

	first, last := summaries[0], summaries[len(summaries)-1]
	variation := 0.0
	if first.Accidents > 0 {
		variation = float64(last.Accidents-first.Accidents) / float64(first.Accidents) * 100
	}

	peak := summaries[0]
	for _, s := range summaries[1:] {
		if s.Accidents > peak.Accidents {
			peak = s
		}
	}

	years := make([]float64, len(summaries))
	counts := make([]float64, len(summaries))
	for i, s := range summaries {
		years[i] = float64(s.Year)
		counts[i] = float64(s.Accidents)
	}
	trendLabel := "stable"
	if trend, err := stats.TemporalTrend(years, counts); err == nil {
		trendLabel = trend.Direction
	}

	out := []Insight{
		{
			Category: "temporal",
			Text: fmt.Sprintf("Accidents went from %d in %d to %d in %d (%+.1f%%), a %s trend.",
				first.Accidents, first.Year, last.Accidents, last.Year, variation, trendLabel),
		},
		{
			Category: "temporal",
			Text:     fmt.Sprintf("The peak year was %d with %d accidents.", peak.Year, peak.Accidents),
		},
	}
	return out
}

// geographic covers concentration of accidents across states.
func (g *Generator) geographic(t *dataset.Table) []Insight {
	entries, err := stats.Frequency(t, domain.ColState, 3)
	if err != nil || len(entries) == 0 {
		return nil
	}

	topShare := 0.0
	names := make([]string, len(entries))
	for i, e := range entries {
		topShare += e.Percent
		names[i] = fmt.Sprintf("%s (%.1f%%)", e.Value, e.Percent)
	}

	level := "balanced"
	switch {
	case topShare >= 50:
		level = "high"
	case topShare >= 30:
		level = "moderate"
	}

	return []Insight{{
		Category: "geographic",
		Text: fmt.Sprintf("The top states %s concentrate %.1f%% of accidents, a %s geographic concentration.",
			strings.Join(names, ", "), topShare, level),
	}}
}

// causes covers the leading causes and the human-factor share.
func (g *Generator) causes(t *dataset.Table) []Insight {
	entries, err := stats.Frequency(t, domain.ColCause, 0)
	if err != nil || len(entries) == 0 {
		return nil
	}

	humanShare := 0.0
	for _, e := range entries {
		if isHumanFactor(e.Value) {
			humanShare += e.Percent
		}
	}

	top := entries
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, len(top))
	for i, e := range top {
		names[i] = fmt.Sprintf("%s (%.1f%%)", e.Value, e.Percent)
	}

	out := []Insight{{
		Category: "causes",
		Text:     fmt.Sprintf("Leading causes: %s.", strings.Join(names, ", ")),
	}}
	if humanShare > 0 {
		out = append(out, Insight{
			Category: "causes",
			Text: fmt.Sprintf("Human factors account for %.1f%% of accidents; road and environment conditions for %.1f%%.",
				humanShare, 100-humanShare),
		})
	}
	return out
}

// severity covers the class shares of the severity column.
func (g *Generator) severity(t *dataset.Table) []Insight {
	entries, err := stats.Frequency(t, domain.ColSeverity, 0)
	if err != nil || len(entries) == 0 {
		return nil
	}

	shares := make(map[string]float64, len(entries))
	for _, e := range entries {
		shares[e.Value] = e.Percent
	}

	return []Insight{{
		Category: "severity",
		Text: fmt.Sprintf("Severity split: %.1f%% with fatalities, %.1f%% with injuries, %.1f%% without victims.",
			shares[domain.SeverityFatal], shares[domain.SeverityInjured], shares[domain.SeverityNoVictims]),
	}}
}

// timing covers peak month, weekday, hour and the weekend share.
func (g *Generator) timing(t *dataset.Table) []Insight {
	var out []Insight

	if peak, ok := peakValue(t, domain.ColMonth); ok {
		out = append(out, Insight{
			Category: "timing",
			Text:     fmt.Sprintf("Month %s has the most accidents.", peak),
		})
	}
	if peak, ok := peakValue(t, domain.ColWeekdayName); ok {
		out = append(out, Insight{
			Category: "timing",
			Text:     fmt.Sprintf("%s is the weekday with the most accidents.", peak),
		})
	}
	if peak, ok := peakValue(t, domain.ColHour); ok {
		out = append(out, Insight{
			Category: "timing",
			Text:     fmt.Sprintf("The busiest hour is %s:00.", peak),
		})
	}

	if t.HasColumn(domain.ColIsWeekend) {
		weekend := 0
		total := 0
		for _, v := range t.Column(domain.ColIsWeekend) {
			if dataset.IsMissing(v) {
				continue
			}
			total++
			if v == "1" {
				weekend++
			}
		}
		if total > 0 {
			out = append(out, Insight{
				Category: "timing",
				Text:     fmt.Sprintf("%.1f%% of accidents happen on weekends.", float64(weekend)/float64(total)*100),
			})
		}
	}
	return out
}

func isHumanFactor(cause string) bool {
	lower := strings.ToLower(cause)
	for _, kw := range humanFactorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// peakValue returns the most frequent non-missing value of a column.
func peakValue(t *dataset.Table, column string) (string, bool) {
	entries, err := stats.Frequency(t, column, 1)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	return entries[0].Value, true
}

func sumIntColumn(t *dataset.Table, column string) int {
	if !t.HasColumn(column) {
		return 0
	}
	sum := 0.0
	values, valid := t.ColumnFloats(column)
	for i, v := range values {
		if valid[i] {
			sum += v
		}
	}
	return int(sum)
}
