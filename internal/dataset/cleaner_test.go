package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// rawAccidentTable builds an uncleaned table with messy headers, comma
// decimals, missing values and one duplicate row.
func rawAccidentTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable([]string{"UF", "Data_Inversa", "Horário", "Mortos", "Latitude"})
	rows := [][]string{
		{"SP", "05/03/2023", "14:30:00", "1", "-23,5"},
		{"MG", "06/03/2023", "02:15:00", "", "10"},
		{"PR", "07/03/2023", "19:00:00", "3", ""},
		{"PR", "07/03/2023", "19:00:00", "3", ""},
	}
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}
	return tbl
}

func TestCleanNormalizesHeaders(t *testing.T) {
	cleaned, err := NewCleaner(nil).Clean(context.Background(), rawAccidentTable(t))
	require.NoError(t, err)

	for _, col := range []string{domain.ColState, domain.ColDate, domain.ColTime, domain.ColDeaths, domain.ColLatitude} {
		assert.True(t, cleaned.HasColumn(col), col)
	}
}

func TestCleanDerivesTemporalColumns(t *testing.T) {
	cleaned, err := NewCleaner(nil).Clean(context.Background(), rawAccidentTable(t))
	require.NoError(t, err)

	// 05/03/2023 is day-first: March 5, 2023, a Sunday.
	assert.Equal(t, "2023-03-05", cleaned.Cell(0, domain.ColDate))
	assert.Equal(t, "2023", cleaned.Cell(0, domain.ColYear))
	assert.Equal(t, "3", cleaned.Cell(0, domain.ColMonth))
	assert.Equal(t, "5", cleaned.Cell(0, domain.ColDay))
	assert.Equal(t, "6", cleaned.Cell(0, domain.ColWeekdayNum))
	assert.Equal(t, "14", cleaned.Cell(0, domain.ColHour))
	assert.Equal(t, "2023-03-05 14:30:00", cleaned.Cell(0, "data_hora_completa"))

	// March 6, 2023 is a Monday.
	assert.Equal(t, "0", cleaned.Cell(1, domain.ColWeekdayNum))
	assert.Equal(t, "2", cleaned.Cell(1, domain.ColHour))
}

func TestCleanFixesCoordinates(t *testing.T) {
	cleaned, err := NewCleaner(nil).Clean(context.Background(), rawAccidentTable(t))
	require.NoError(t, err)

	// Comma decimal converted; out-of-range and missing latitudes imputed
	// with the median of the single valid value.
	assert.Equal(t, "-23.5", cleaned.Cell(0, domain.ColLatitude))
	assert.Equal(t, "-23.5", cleaned.Cell(1, domain.ColLatitude))
	assert.Equal(t, "-23.5", cleaned.Cell(2, domain.ColLatitude))
}

func TestCleanImputesMissing(t *testing.T) {
	cleaned, err := NewCleaner(nil).Clean(context.Background(), rawAccidentTable(t))
	require.NoError(t, err)

	// Missing deaths filled with the median of {1, 3, 3}.
	assert.Equal(t, "3", cleaned.Cell(1, domain.ColDeaths))
}

func TestCleanRemovesDuplicates(t *testing.T) {
	cleaned, err := NewCleaner(nil).Clean(context.Background(), rawAccidentTable(t))
	require.NoError(t, err)
	assert.Equal(t, 3, cleaned.NumRows())
}

func TestCleanDropsNearEmptyColumns(t *testing.T) {
	tbl := rawAccidentTable(t)
	tbl.AddColumn("coluna_vazia", nil)

	cleaned, err := NewCleaner(nil).Clean(context.Background(), tbl)
	require.NoError(t, err)
	assert.False(t, cleaned.HasColumn("coluna_vazia"))
}

func TestCleanHonorsDropThreshold(t *testing.T) {
	tbl := rawAccidentTable(t)
	tbl.AddColumn("observacao", []string{"x", "", "", ""})

	// 3 of 4 cells are missing: above a 50% threshold, below the default 95%.
	strict := NewCleaner(nil)
	strict.DropNullFraction = 0.5
	cleaned, err := strict.Clean(context.Background(), tbl)
	require.NoError(t, err)
	assert.False(t, cleaned.HasColumn("observacao"))

	lax := rawAccidentTable(t)
	lax.AddColumn("observacao", []string{"x", "", "", ""})
	kept, err := NewCleaner(nil).Clean(context.Background(), lax)
	require.NoError(t, err)
	assert.True(t, kept.HasColumn("observacao"))
	assert.Equal(t, CategoricalFill, kept.Cell(1, "observacao"))
}

func TestCleanImputesCategoricalWithSentinel(t *testing.T) {
	tbl := rawAccidentTable(t)
	tbl.AddColumn("tipo_pista", []string{"Simples", "", "Dupla", "Dupla"})

	cleaned, err := NewCleaner(nil).Clean(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, CategoricalFill, cleaned.Cell(1, "tipo_pista"))
}

func TestCleanIsIdempotent(t *testing.T) {
	cleaner := NewCleaner(nil)
	ctx := context.Background()

	once, err := cleaner.Clean(ctx, rawAccidentTable(t))
	require.NoError(t, err)
	twice, err := cleaner.Clean(ctx, once)
	require.NoError(t, err)

	require.Equal(t, once.Columns(), twice.Columns())
	require.Equal(t, once.NumRows(), twice.NumRows())
	for r := 0; r < once.NumRows(); r++ {
		for _, col := range once.Columns() {
			assert.Equal(t, once.Cell(r, col), twice.Cell(r, col),
				"row %d column %s", r, col)
		}
	}
}

func TestCleanRejectsEmptyTable(t *testing.T) {
	_, err := NewCleaner(nil).Clean(context.Background(), NewTable([]string{"uf"}))
	assert.Error(t, err)

	_, err = NewCleaner(nil).Clean(context.Background(), nil)
	assert.Error(t, err)
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  UF ", "uf"},
		{"Classificação_Acidente", "classificacao_acidente"},
		{"condicao metereologica", "condicao_metereologica"},
		{"Horário", "horario"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColumnName(tt.in), tt.in)
	}
}
