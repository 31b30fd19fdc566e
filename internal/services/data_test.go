package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataService_ListYears(t *testing.T) {
	cfg, paths, _ := testEnv(t)
	s := NewDataService(cfg, paths, nil)

	years, err := s.ListYears(testContext())
	require.NoError(t, err)
	require.Len(t, years, 2)

	assert.Equal(t, 2022, years[0].Year)
	assert.Equal(t, 2023, years[1].Year)
	assert.Equal(t, "datatran2022.csv", years[0].Name)
	assert.Greater(t, years[0].Size, int64(0))
}

func TestDataService_Profile(t *testing.T) {
	cfg, paths, _ := testEnv(t)
	s := NewDataService(cfg, paths, nil)

	profile, err := s.Profile(testContext(), []int{2022, 2023})
	require.NoError(t, err)

	assert.Equal(t, 210, profile.Rows)
	assert.NotEmpty(t, profile.Columns)

	require.Len(t, profile.Yearly, 2)
	assert.Equal(t, 90, profile.Yearly[0].Accidents)
	assert.Equal(t, 120, profile.Yearly[1].Accidents)
	// 90 of 90 rows in 2022 are divisible by 3 in thirds: 30 fatal rows.
	assert.Equal(t, 30, profile.Yearly[0].Deaths)
}

func TestDataService_ProfileMissingYears(t *testing.T) {
	cfg, paths, _ := testEnv(t)
	s := NewDataService(cfg, paths, nil)

	_, err := s.Profile(testContext(), []int{1999})
	assert.Error(t, err)
}

// uploadCSV builds a one-row extract dated in the given year.
func uploadCSV(year int) string {
	var b strings.Builder
	b.WriteString(fixtureHeader + "\n")
	b.WriteString(fmt.Sprintf("SP;116;10,0;%d-05-01;domingo;08:00:00;Falta de atencao;Colisao frontal;Sem Vítimas;Pleno dia;Crescente;Ceu Claro;Simples;Reta;2;0;0;0;0;2;1;-23,5;-46,6\n", year))
	return b.String()
}

func TestDataService_SaveUpload(t *testing.T) {
	cfg, paths, _ := testEnv(t)
	s := NewDataService(cfg, paths, nil)

	t.Run("year-named upload joins the dataset", func(t *testing.T) {
		path, err := s.SaveUpload(testContext(), "datatran2024.csv", strings.NewReader(uploadCSV(2024)))
		require.NoError(t, err)
		assert.Equal(t, paths.YearFilePath(2024), path)

		years, err := s.ListYears(testContext())
		require.NoError(t, err)
		require.Len(t, years, 3)
		assert.Equal(t, 2024, years[2].Year)

		profile, err := s.Profile(testContext(), []int{2024})
		require.NoError(t, err)
		assert.Equal(t, 1, profile.Rows)
	})

	t.Run("year inferred from the data", func(t *testing.T) {
		path, err := s.SaveUpload(testContext(), "extra.csv", strings.NewReader(uploadCSV(2025)))
		require.NoError(t, err)
		assert.Equal(t, paths.YearFilePath(2025), path)
		// The staged copy moved out of the uploads directory.
		assert.False(t, s.uploads.Exists("extra.csv"))
	})

	t.Run("missing required columns rejected", func(t *testing.T) {
		bad := "uf;ano\nSP;2023\n"
		_, err := s.SaveUpload(testContext(), "bad.csv", strings.NewReader(bad))
		require.Error(t, err)
		// The rejected file must not linger in the uploads directory.
		assert.False(t, s.uploads.Exists("bad.csv"))
	})

	t.Run("non csv rejected", func(t *testing.T) {
		_, err := s.SaveUpload(testContext(), "data.xlsx", strings.NewReader("x"))
		assert.Error(t, err)
	})
}

func TestDataService_CleanerThresholdFromConfig(t *testing.T) {
	cfg, paths, _ := testEnv(t)
	cfg.Data.DropNullPercent = 80

	s := NewDataService(cfg, paths, nil)
	assert.InDelta(t, 0.80, s.cleaner.DropNullFraction, 1e-9)
}
