// Package features derives the engineered temporal columns used by the
// severity classifier. All rules are fixed; nothing here carries learned state.
package features

import (
	"fmt"
	"strconv"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Day period labels, bucketed over the hour of day.
const (
	PeriodEarlyMorning = "Madrugada" // [0, 6]
	PeriodMorning      = "Manha"     // (6, 12]
	PeriodAfternoon    = "Tarde"     // (12, 18]
	PeriodNight        = "Noite"     // (18, 23]
)

// Build adds the derived feature columns to a cleaned table:
//
//   - eh_fim_semana: 1 when the weekday is Saturday or Sunday
//   - eh_noite:      1 when the hour is >= 18 or < 6
//   - periodo_dia:   the day period bucket of the hour
//
// The table must already carry the hora and dia_semana_num columns produced
// by the cleaner.
func Build(t *dataset.Table) (*dataset.Table, error) {
	for _, col := range []string{domain.ColHour, domain.ColWeekdayNum} {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("feature building requires column %q", col)
		}
	}

	out := t.Clone()
	n := out.NumRows()

	weekend := make([]string, n)
	night := make([]string, n)
	period := make([]string, n)

	for r := 0; r < n; r++ {
		weekday, wdOK := intCell(out.Cell(r, domain.ColWeekdayNum))
		hour, hourOK := intCell(out.Cell(r, domain.ColHour))

		weekend[r] = boolFlag(wdOK && IsWeekend(weekday))
		night[r] = boolFlag(hourOK && IsNight(hour))
		if hourOK {
			period[r] = DayPeriod(hour)
		} else {
			period[r] = dataset.CategoricalFill
		}
	}

	out.AddColumn(domain.ColIsWeekend, weekend)
	out.AddColumn(domain.ColIsNight, night)
	out.AddColumn(domain.ColDayPeriod, period)
	return out, nil
}

// IsWeekend reports whether a Monday=0 weekday number falls on the weekend.
func IsWeekend(weekday int) bool {
	return weekday == 5 || weekday == 6
}

// IsNight reports whether an hour of day counts as night time.
func IsNight(hour int) bool {
	return hour >= 18 || hour < 6
}

// DayPeriod buckets an hour of day into its period label. The buckets are
// right-inclusive with the first one closed at zero: [0,6], (6,12], (12,18],
// (18,23].
func DayPeriod(hour int) string {
	switch {
	case hour <= 6:
		return PeriodEarlyMorning
	case hour <= 12:
		return PeriodMorning
	case hour <= 18:
		return PeriodAfternoon
	default:
		return PeriodNight
	}
}

func intCell(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
