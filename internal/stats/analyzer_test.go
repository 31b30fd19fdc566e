package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/dataset"
)

func numericTable(t *testing.T, cols []string, rows [][]string) *dataset.Table {
	t.Helper()
	tbl := dataset.NewTable(cols)
	for _, r := range rows {
		require.NoError(t, tbl.AppendRow(r))
	}
	return tbl
}

func TestCorrelation(t *testing.T) {
	tbl := numericTable(t, []string{"a", "b", "c"}, [][]string{
		{"1", "2", "9"},
		{"2", "4", "7"},
		{"3", "6", "5"},
		{"4", "8", "3"},
	})

	m, err := Correlation(tbl, []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Values[0][0], 1e-9)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	assert.InDelta(t, -1.0, m.Values[0][2], 1e-9)
	assert.Equal(t, m.Values[1][2], m.Values[2][1])
}

func TestCorrelation_SkipsUnparseableRows(t *testing.T) {
	tbl := numericTable(t, []string{"a", "b"}, [][]string{
		{"1", "1"},
		{"nao_informado", "2"},
		{"3", "3"},
		{"4", "4"},
	})

	m, err := Correlation(tbl, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-9)
}

func TestCorrelation_Errors(t *testing.T) {
	tbl := numericTable(t, []string{"a"}, nil)
	_, err := Correlation(tbl, []string{"a"})
	assert.Error(t, err)
	_, err = Correlation(tbl, []string{"a", "missing"})
	assert.Error(t, err)
}

func TestWelchTTest(t *testing.T) {
	a := []float64{10.1, 10.4, 9.8, 10.2, 10.0, 10.3, 9.9, 10.1}
	b := []float64{12.0, 12.3, 11.8, 12.1, 12.2, 11.9, 12.4, 12.0}

	res, err := WelchTTest(a, b)
	require.NoError(t, err)

	assert.Less(t, res.T, 0.0)
	assert.Less(t, res.P, Alpha)
	assert.True(t, res.Significant)
	assert.InDelta(t, 10.1, res.MeanA, 0.1)
}

func TestWelchTTest_IdenticalSamples(t *testing.T) {
	a := []float64{5, 6, 7, 8, 9}
	res, err := WelchTTest(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.T, 1e-9)
	assert.False(t, res.Significant)
}

func TestOneWayANOVA(t *testing.T) {
	groups := [][]float64{
		{1.0, 1.1, 0.9, 1.05, 0.95},
		{5.0, 5.1, 4.9, 5.05, 4.95},
		{9.0, 9.1, 8.9, 9.05, 8.95},
	}

	res, err := OneWayANOVA(groups)
	require.NoError(t, err)

	assert.Equal(t, 2, res.DFBetween)
	assert.Equal(t, 12, res.DFWithin)
	assert.True(t, res.Significant)
}

func TestOneWayANOVA_Errors(t *testing.T) {
	_, err := OneWayANOVA([][]float64{{1, 2}})
	assert.Error(t, err)
	_, err = OneWayANOVA([][]float64{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestChiSquareIndependence(t *testing.T) {
	t.Run("dependent variables", func(t *testing.T) {
		observed := [][]float64{
			{90, 10},
			{10, 90},
		}
		res, err := ChiSquareIndependence(observed)
		require.NoError(t, err)
		assert.Equal(t, 1, res.DF)
		assert.True(t, res.Significant)
	})

	t.Run("independent variables", func(t *testing.T) {
		observed := [][]float64{
			{50, 50},
			{50, 50},
		}
		res, err := ChiSquareIndependence(observed)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, res.Chi2, 1e-9)
		assert.False(t, res.Significant)
	})

	t.Run("ragged table", func(t *testing.T) {
		_, err := ChiSquareIndependence([][]float64{{1, 2}, {3}})
		assert.Error(t, err)
	})
}

func TestTemporalTrend(t *testing.T) {
	tests := []struct {
		name   string
		years  []float64
		values []float64
		want   string
	}{
		{
			name:   "rising",
			years:  []float64{2018, 2019, 2020, 2021, 2022, 2023},
			values: []float64{100, 120, 141, 160, 182, 200},
			want:   TrendRising,
		},
		{
			name:   "falling",
			years:  []float64{2018, 2019, 2020, 2021, 2022, 2023},
			values: []float64{200, 181, 161, 140, 119, 100},
			want:   TrendFalling,
		},
		{
			name:   "noisy flat series",
			years:  []float64{2018, 2019, 2020, 2021, 2022, 2023},
			values: []float64{100, 140, 90, 130, 95, 120},
			want:   TrendStable,
		},
		{
			name:   "too short",
			years:  []float64{2022, 2023},
			values: []float64{1, 2},
			want:   TrendStable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := TemporalTrend(tt.years, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Direction)
		})
	}
}

func TestFrequency(t *testing.T) {
	tbl := numericTable(t, []string{"uf"}, [][]string{
		{"SP"}, {"SP"}, {"SP"}, {"MG"}, {"MG"}, {"PR"}, {""},
	})

	entries, err := Frequency(tbl, "uf", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "SP", entries[0].Value)
	assert.Equal(t, 3, entries[0].Count)
	assert.InDelta(t, 50.0, entries[0].Percent, 1e-9)
	assert.Equal(t, "MG", entries[1].Value)
	assert.Equal(t, "PR", entries[2].Value)

	top, err := Frequency(tbl, "uf", 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestOutliersIQR(t *testing.T) {
	values := []float64{10, 11, 12, 11, 10, 12, 11, 100}
	out := OutliersIQR(values)
	assert.Equal(t, []int{7}, out)

	assert.Nil(t, OutliersIQR([]float64{1, 2}))
}

func TestOutliersZScore(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 10 + float64(i%3)
	}
	values = append(values, 500)

	out := OutliersZScore(values)
	assert.Equal(t, []int{40}, out)

	assert.Nil(t, OutliersZScore([]float64{5, 5, 5}))
}
