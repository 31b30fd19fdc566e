package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

func TestBuildRequiresTemporalColumns(t *testing.T) {
	tbl := dataset.NewTable([]string{domain.ColState})
	require.NoError(t, tbl.AppendRow([]string{"SP"}))

	_, err := Build(tbl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ColHour)
}

func TestBuildDerivedColumns(t *testing.T) {
	tbl := dataset.NewTable([]string{domain.ColHour, domain.ColWeekdayNum})
	rows := [][]string{
		{"19", "5"}, // Saturday night
		{"9", "2"},  // Wednesday morning
		{"5", "6"},  // Sunday early morning
		{"14", "4"}, // Friday afternoon
		{"", ""},    // missing temporal data
	}
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}

	out, err := Build(tbl)
	require.NoError(t, err)

	assert.Equal(t, "1", out.Cell(0, domain.ColIsWeekend))
	assert.Equal(t, "1", out.Cell(0, domain.ColIsNight))
	assert.Equal(t, PeriodNight, out.Cell(0, domain.ColDayPeriod))

	assert.Equal(t, "0", out.Cell(1, domain.ColIsWeekend))
	assert.Equal(t, "0", out.Cell(1, domain.ColIsNight))
	assert.Equal(t, PeriodMorning, out.Cell(1, domain.ColDayPeriod))

	assert.Equal(t, "1", out.Cell(2, domain.ColIsWeekend))
	assert.Equal(t, "1", out.Cell(2, domain.ColIsNight))
	assert.Equal(t, PeriodEarlyMorning, out.Cell(2, domain.ColDayPeriod))

	assert.Equal(t, "0", out.Cell(3, domain.ColIsWeekend))
	assert.Equal(t, "0", out.Cell(3, domain.ColIsNight))
	assert.Equal(t, PeriodAfternoon, out.Cell(3, domain.ColDayPeriod))

	assert.Equal(t, "0", out.Cell(4, domain.ColIsWeekend))
	assert.Equal(t, "0", out.Cell(4, domain.ColIsNight))
	assert.Equal(t, dataset.CategoricalFill, out.Cell(4, domain.ColDayPeriod))

	// Input table untouched.
	assert.False(t, tbl.HasColumn(domain.ColIsNight))
}

func TestIsNightBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		want bool
	}{
		{0, true}, {5, true}, {6, false}, {17, false}, {18, true}, {23, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNight(tt.hour), "hour %d", tt.hour)
	}
}

func TestIsWeekend(t *testing.T) {
	for wd := 0; wd < 5; wd++ {
		assert.False(t, IsWeekend(wd), "weekday %d", wd)
	}
	assert.True(t, IsWeekend(5))
	assert.True(t, IsWeekend(6))
}

func TestDayPeriod(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, PeriodEarlyMorning},
		{6, PeriodEarlyMorning},
		{7, PeriodMorning},
		{12, PeriodMorning},
		{13, PeriodAfternoon},
		{18, PeriodAfternoon},
		{19, PeriodNight},
		{23, PeriodNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DayPeriod(tt.hour), "hour %d", tt.hour)
	}
}
