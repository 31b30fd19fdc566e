package ml

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoder_Transform(t *testing.T) {
	enc := &LabelEncoder{}
	enc.Fit([]string{"Chuva", "Sol", "Nublado", "Sol", "Chuva"})

	require.Equal(t, []string{"Chuva", "Nublado", "Sol"}, enc.Classes)

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "first class", value: "Chuva", want: 0},
		{name: "middle class", value: "Nublado", want: 1},
		{name: "last class", value: "Sol", want: 2},
		{name: "unseen value", value: "Granizo", want: UnknownValue},
		{name: "empty value", value: "", want: UnknownValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, enc.Transform(tt.value))
		})
	}
}

func TestLabelEncoder_OrderIndependent(t *testing.T) {
	a := &LabelEncoder{}
	a.Fit([]string{"c", "a", "b"})
	b := &LabelEncoder{}
	b.Fit([]string{"b", "c", "a", "a"})

	assert.Equal(t, a.Classes, b.Classes)
	assert.Equal(t, a.Transform("b"), b.Transform("b"))
}

func TestLabelEncoder_Inverse(t *testing.T) {
	enc := &LabelEncoder{}
	enc.Fit([]string{"x", "y"})

	v, ok := enc.Inverse(1)
	require.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = enc.Inverse(UnknownValue)
	assert.False(t, ok)
	_, ok = enc.Inverse(2)
	assert.False(t, ok)
}

func TestLabelEncoder_GobRoundtrip(t *testing.T) {
	enc := &LabelEncoder{}
	enc.Fit([]string{"a", "b", "c"})
	// Exercise the lazy index before encoding so the roundtrip must rebuild it.
	require.Equal(t, 1, enc.Transform("b"))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(enc))

	decoded := &LabelEncoder{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(decoded))

	assert.Equal(t, enc.Classes, decoded.Classes)
	assert.Equal(t, 2, decoded.Transform("c"))
	assert.Equal(t, UnknownValue, decoded.Transform("z"))
}

func TestStandardScaler_FitTransform(t *testing.T) {
	s := &StandardScaler{}
	rows := [][]float64{
		{1, 10},
		{2, 10},
		{3, 10},
	}
	require.NoError(t, s.Fit(rows))

	assert.InDelta(t, 2.0, s.Mean[0], 1e-9)
	// Constant column keeps std 1 so it only shifts.
	assert.InDelta(t, 1.0, s.Std[1], 1e-9)

	require.NoError(t, s.Transform(rows))
	assert.InDelta(t, 0.0, rows[1][0], 1e-9)
	assert.InDelta(t, 0.0, rows[0][1], 1e-9)
	assert.InDelta(t, -rows[2][0], rows[0][0], 1e-9)
}

func TestStandardScaler_Errors(t *testing.T) {
	s := &StandardScaler{}
	require.Error(t, s.Fit(nil))
	require.Error(t, s.Transform([][]float64{{1}}))

	require.NoError(t, s.Fit([][]float64{{1, 2}, {3, 4}}))
	assert.Error(t, s.Transform([][]float64{{1}}))
}
