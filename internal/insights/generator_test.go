package insights

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// insightTable builds a small dataset with a rising yearly series, SP-heavy
// geography and a dominant human-factor cause.
func insightTable(t *testing.T) *dataset.Table {
	t.Helper()

	cols := []string{
		domain.ColYear, domain.ColState, domain.ColCause, domain.ColSeverity,
		domain.ColDeaths, domain.ColInjured, domain.ColPeople,
		domain.ColMonth, domain.ColWeekdayName, domain.ColHour, domain.ColIsWeekend,
	}
	tbl := dataset.NewTable(cols)

	years := []struct {
		year string
		rows int
	}{
		{"2019", 10}, {"2020", 14}, {"2021", 18}, {"2022", 22}, {"2023", 26},
	}
	i := 0
	for _, y := range years {
		for r := 0; r < y.rows; r++ {
			state := "SP"
			if i%4 == 3 {
				state = "MG"
			}
			cause := "Falta de atencao"
			if i%5 == 4 {
				cause = "Defeito na pista"
			}
			severity := domain.SeverityInjured
			deaths := "0"
			if i%10 == 0 {
				severity = domain.SeverityFatal
				deaths = "1"
			} else if i%3 == 0 {
				severity = domain.SeverityNoVictims
			}
			weekend := "0"
			weekday := "segunda-feira"
			if i%7 >= 5 {
				weekend = "1"
				weekday = "sabado"
			}

			require.NoError(t, tbl.AppendRow([]string{
				y.year, state, cause, severity,
				deaths, "1", "2",
				fmt.Sprintf("%d", i%12+1), weekday, fmt.Sprintf("%d", i%24), weekend,
			}))
			i++
		}
	}
	return tbl
}

func TestGenerator_Generate(t *testing.T) {
	tbl := insightTable(t)
	g := NewGenerator(nil)

	report, err := g.Generate(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 90, report.TotalAccidents)
	assert.Equal(t, 9, report.TotalDeaths)
	assert.InDelta(t, 10.0, report.MortalityRate, 1e-9)
	assert.NotEmpty(t, report.Insights)

	categories := make(map[string]bool)
	for _, in := range report.Insights {
		categories[in.Category] = true
		assert.NotEmpty(t, in.Text)
	}
	for _, want := range []string{"temporal", "geographic", "causes", "severity", "timing"} {
		assert.True(t, categories[want], "missing category %s", want)
	}
}

func TestGenerator_TemporalTrend(t *testing.T) {
	tbl := insightTable(t)
	g := NewGenerator(nil)

	report, err := g.Generate(context.Background(), tbl)
	require.NoError(t, err)

	var temporal []string
	for _, in := range report.Insights {
		if in.Category == "temporal" {
			temporal = append(temporal, in.Text)
		}
	}
	require.Len(t, temporal, 2)
	assert.Contains(t, temporal[0], "rising")
	assert.Contains(t, temporal[1], "2023")
}

func TestGenerator_GeographicConcentration(t *testing.T) {
	tbl := insightTable(t)
	g := NewGenerator(nil)

	report, err := g.Generate(context.Background(), tbl)
	require.NoError(t, err)

	found := false
	for _, in := range report.Insights {
		if in.Category == "geographic" {
			found = true
			assert.Contains(t, in.Text, "SP")
			assert.Contains(t, in.Text, "high")
		}
	}
	assert.True(t, found)
}

func TestGenerator_HumanFactorShare(t *testing.T) {
	tbl := insightTable(t)
	g := NewGenerator(nil)

	report, err := g.Generate(context.Background(), tbl)
	require.NoError(t, err)

	found := false
	for _, in := range report.Insights {
		if in.Category == "causes" && strings.Contains(in.Text, "Human factors") {
			found = true
			assert.Contains(t, in.Text, "80.0%")
		}
	}
	assert.True(t, found)
}

func TestGenerator_EmptyDataset(t *testing.T) {
	g := NewGenerator(nil)
	_, err := g.Generate(context.Background(), dataset.NewTable([]string{domain.ColYear}))
	assert.Error(t, err)
}

func TestReport_Render(t *testing.T) {
	tbl := insightTable(t)
	g := NewGenerator(nil)

	report, err := g.Generate(context.Background(), tbl)
	require.NoError(t, err)

	text := report.Render()
	assert.Contains(t, text, "Total accidents: 90")
	assert.Contains(t, text, "[temporal]")
	assert.Contains(t, text, "[severity]")
}

func TestIsHumanFactor(t *testing.T) {
	tests := []struct {
		cause string
		want  bool
	}{
		{"Falta de atencao", true},
		{"Ingestão de álcool", true},
		{"Velocidade incompativel", true},
		{"Defeito na pista", false},
		{"Animais na via", false},
	}
	for _, tt := range tests {
		t.Run(tt.cause, func(t *testing.T) {
			assert.Equal(t, tt.want, isHumanFactor(tt.cause))
		})
	}
}
