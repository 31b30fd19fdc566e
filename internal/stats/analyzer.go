package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/khkk24/projeto-how-final/internal/dataset"
)

// Alpha is the significance level shared by every hypothesis test here.
const Alpha = 0.05

// Trend directions returned by TemporalTrend.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// CorrelationMatrix holds pairwise Pearson correlations between columns.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// TTestResult is a Welch two-sample t-test outcome.
type TTestResult struct {
	T           float64 `json:"t"`
	P           float64 `json:"p"`
	DF          float64 `json:"df"`
	MeanA       float64 `json:"mean_a"`
	MeanB       float64 `json:"mean_b"`
	Significant bool    `json:"significant"`
}

// AnovaResult is a one-way ANOVA outcome.
type AnovaResult struct {
	F           float64 `json:"f"`
	P           float64 `json:"p"`
	DFBetween   int     `json:"df_between"`
	DFWithin    int     `json:"df_within"`
	Significant bool    `json:"significant"`
}

// ChiSquareResult is a chi-square independence test outcome.
type ChiSquareResult struct {
	Chi2        float64 `json:"chi2"`
	P           float64 `json:"p"`
	DF          int     `json:"df"`
	Significant bool    `json:"significant"`
}

// TrendResult classifies a yearly series as rising, falling or stable.
type TrendResult struct {
	Correlation float64 `json:"correlation"`
	P           float64 `json:"p"`
	Direction   string  `json:"direction"`
}

// FrequencyEntry is one row of a frequency table.
type FrequencyEntry struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Correlation computes the Pearson correlation matrix over the named numeric
// columns, using only rows where both columns parse.
func Correlation(t *dataset.Table, columns []string) (*CorrelationMatrix, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("need at least 2 columns, got %d", len(columns))
	}
	values := make([][]float64, len(columns))
	valid := make([][]bool, len(columns))
	for i, col := range columns {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("column %q not found", col)
		}
		values[i], valid[i] = t.ColumnFloats(col)
	}

	m := make([][]float64, len(columns))
	for i := range m {
		m[i] = make([]float64, len(columns))
		m[i][i] = 1
	}
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			var xs, ys []float64
			for r := 0; r < t.NumRows(); r++ {
				if valid[i][r] && valid[j][r] {
					xs = append(xs, values[i][r])
					ys = append(ys, values[j][r])
				}
			}
			r := 0.0
			if len(xs) >= 2 {
				r = stat.Correlation(xs, ys, nil)
				if math.IsNaN(r) {
					r = 0
				}
			}
			m[i][j] = r
			m[j][i] = r
		}
	}
	return &CorrelationMatrix{Columns: columns, Values: m}, nil
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances. Degrees of freedom follow Welch-Satterthwaite.
func WelchTTest(a, b []float64) (*TTestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, fmt.Errorf("both samples need at least 2 values, got %d and %d", len(a), len(b))
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	nA, nB := float64(len(a)), float64(len(b))

	se := math.Sqrt(varA/nA + varB/nB)
	if se == 0 {
		return &TTestResult{MeanA: meanA, MeanB: meanB, DF: nA + nB - 2}, nil
	}
	tStat := (meanA - meanB) / se

	num := math.Pow(varA/nA+varB/nB, 2)
	den := math.Pow(varA/nA, 2)/(nA-1) + math.Pow(varB/nB, 2)/(nB-1)
	df := num / den

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(tStat))

	return &TTestResult{
		T:           tStat,
		P:           p,
		DF:          df,
		MeanA:       meanA,
		MeanB:       meanB,
		Significant: p < Alpha,
	}, nil
}

// OneWayANOVA tests whether the means of two or more groups differ.
func OneWayANOVA(groups [][]float64) (*AnovaResult, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("need at least 2 groups, got %d", len(groups))
	}

	var all []float64
	for i, g := range groups {
		if len(g) < 2 {
			return nil, fmt.Errorf("group %d needs at least 2 values, got %d", i, len(g))
		}
		all = append(all, g...)
	}
	grandMean := stat.Mean(all, nil)

	ssBetween, ssWithin := 0.0, 0.0
	for _, g := range groups {
		mean := stat.Mean(g, nil)
		ssBetween += float64(len(g)) * (mean - grandMean) * (mean - grandMean)
		for _, v := range g {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := len(groups) - 1
	dfWithin := len(all) - len(groups)
	if ssWithin == 0 {
		return &AnovaResult{F: math.Inf(1), DFBetween: dfBetween, DFWithin: dfWithin, Significant: true}, nil
	}

	f := (ssBetween / float64(dfBetween)) / (ssWithin / float64(dfWithin))
	dist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}
	p := 1 - dist.CDF(f)

	return &AnovaResult{
		F:           f,
		P:           p,
		DFBetween:   dfBetween,
		DFWithin:    dfWithin,
		Significant: p < Alpha,
	}, nil
}

// ChiSquareIndependence tests whether the row and column variables of a
// contingency table are independent. Expected counts come from the margins.
func ChiSquareIndependence(observed [][]float64) (*ChiSquareResult, error) {
	if len(observed) < 2 || len(observed[0]) < 2 {
		return nil, fmt.Errorf("contingency table must be at least 2x2")
	}

	rows, cols := len(observed), len(observed[0])
	rowSums := make([]float64, rows)
	colSums := make([]float64, cols)
	total := 0.0
	for i, row := range observed {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged contingency table at row %d", i)
		}
		for j, v := range row {
			rowSums[i] += v
			colSums[j] += v
			total += v
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("contingency table is empty")
	}

	chi2 := 0.0
	for i := range observed {
		for j := range observed[i] {
			expected := rowSums[i] * colSums[j] / total
			if expected == 0 {
				continue
			}
			d := observed[i][j] - expected
			chi2 += d * d / expected
		}
	}

	df := (rows - 1) * (cols - 1)
	dist := distuv.ChiSquared{K: float64(df)}
	p := 1 - dist.CDF(chi2)

	return &ChiSquareResult{
		Chi2:        chi2,
		P:           p,
		DF:          df,
		Significant: p < Alpha,
	}, nil
}

// TemporalTrend classifies a yearly series by the significance and sign of
// the Pearson correlation between year and value. Non-significant slopes are
// stable regardless of sign.
func TemporalTrend(years, values []float64) (*TrendResult, error) {
	if len(years) != len(values) {
		return nil, fmt.Errorf("years and values differ in length: %d vs %d", len(years), len(values))
	}
	if len(years) < 3 {
		return &TrendResult{Direction: TrendStable}, nil
	}

	r := stat.Correlation(years, values, nil)
	if math.IsNaN(r) {
		return &TrendResult{Direction: TrendStable}, nil
	}

	n := float64(len(years))
	p := 1.0
	if math.Abs(r) < 1 {
		tStat := r * math.Sqrt(n-2) / math.Sqrt(1-r*r)
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
		p = 2 * dist.CDF(-math.Abs(tStat))
	} else {
		p = 0
	}

	direction := TrendStable
	if p < Alpha {
		if r > 0 {
			direction = TrendRising
		} else {
			direction = TrendFalling
		}
	}
	return &TrendResult{Correlation: r, P: p, Direction: direction}, nil
}

// Frequency builds a frequency table for a column, sorted by count descending
// with value as the tie-break. topN of 0 keeps every value.
func Frequency(t *dataset.Table, column string, topN int) ([]FrequencyEntry, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("column %q not found", column)
	}

	counts := make(map[string]int)
	total := 0
	for _, v := range t.Column(column) {
		if dataset.IsMissing(v) {
			continue
		}
		counts[v]++
		total++
	}

	entries := make([]FrequencyEntry, 0, len(counts))
	for v, c := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(c) / float64(total) * 100
		}
		entries = append(entries, FrequencyEntry{Value: v, Count: c, Percent: pct})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}

// OutliersIQR returns the indices of values outside 1.5 interquartile ranges
// from the quartiles.
func OutliersIQR(values []float64) []int {
	if len(values) < 4 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	var out []int
	for i, v := range values {
		if v < lo || v > hi {
			out = append(out, i)
		}
	}
	return out
}

// OutliersZScore returns the indices of values more than three standard
// deviations from the mean.
func OutliersZScore(values []float64) []int {
	if len(values) < 2 {
		return nil
	}
	mean, variance := stat.MeanVariance(values, nil)
	std := math.Sqrt(variance)
	if std == 0 {
		return nil
	}

	var out []int
	for i, v := range values {
		if math.Abs(v-mean)/std > 3 {
			out = append(out, i)
		}
	}
	return out
}
