package dataset

import (
	"sort"
	"strconv"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Profile summarizes every column: inferred kind, null share and cardinality.
func Profile(t *Table) []domain.ColumnProfile {
	n := t.NumRows()
	profiles := make([]domain.ColumnProfile, 0, t.NumCols())

	for _, col := range t.Columns() {
		nulls := 0
		distinct := make(map[string]bool)
		for r := 0; r < n; r++ {
			v := t.Cell(r, col)
			if IsMissing(v) {
				nulls++
				continue
			}
			distinct[v] = true
		}

		kind := "categorical"
		if col == domain.ColDate || col == "data_hora_completa" {
			kind = "datetime"
		} else if t.IsNumericColumn(col) {
			kind = "numeric"
		}

		pct := 0.0
		if n > 0 {
			pct = float64(nulls) / float64(n) * 100
		}
		profiles = append(profiles, domain.ColumnProfile{
			Name:        col,
			Kind:        kind,
			NullCount:   nulls,
			NullPercent: pct,
			Distinct:    len(distinct),
		})
	}
	return profiles
}

// YearlySummaries aggregates accidents, deaths, injured and people per year,
// with year-over-year variation percentages.
func YearlySummaries(t *Table) []domain.YearlySummary {
	if !t.HasColumn(domain.ColYear) {
		return nil
	}

	type agg struct {
		accidents, deaths, injured, people int
	}
	byYear := make(map[int]*agg)

	for r := 0; r < t.NumRows(); r++ {
		year, err := strconv.Atoi(t.Cell(r, domain.ColYear))
		if err != nil {
			continue
		}
		a := byYear[year]
		if a == nil {
			a = &agg{}
			byYear[year] = a
		}
		a.accidents++
		a.deaths += intCell(t, r, domain.ColDeaths)
		a.injured += intCell(t, r, domain.ColInjured)
		a.people += intCell(t, r, domain.ColPeople)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	summaries := make([]domain.YearlySummary, 0, len(years))
	for i, y := range years {
		a := byYear[y]
		s := domain.YearlySummary{
			Year:      y,
			Accidents: a.accidents,
			Deaths:    a.deaths,
			Injured:   a.injured,
			People:    a.people,
		}
		if i > 0 {
			prev := byYear[years[i-1]]
			if prev.accidents > 0 {
				s.Variation = (float64(a.accidents) - float64(prev.accidents)) / float64(prev.accidents) * 100
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func intCell(t *Table, r int, col string) int {
	v, ok := ParseNumber(t.Cell(r, col))
	if !ok {
		return 0
	}
	return int(v)
}
