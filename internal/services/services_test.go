package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/operations"
)

var fixtureHeader = strings.Join([]string{
	"uf", "br", "km", "data_inversa", "dia_semana", "horario",
	"causa_acidente", "tipo_acidente", "classificacao_acidente",
	"fase_dia", "sentido_via", "condicao_metereologica",
	"tipo_pista", "tracado_via", "pessoas", "mortos",
	"feridos_leves", "feridos_graves", "feridos", "ilesos",
	"veiculos", "latitude", "longitude",
}, ";")

// writeYearFile writes a synthetic datatran extract with enough rows per
// severity class to train on.
func writeYearFile(t *testing.T, dir string, year, rows int) {
	t.Helper()

	var b strings.Builder
	b.WriteString(fixtureHeader + "\n")

	// SP appears twice so it is strictly the most frequent state and
	// frequency ordering over the fixture is unambiguous.
	states := []string{"SP", "MG", "PR", "SP", "RS"}
	causes := []string{"Falta de atencao", "Velocidade incompativel", "Defeito na pista"}
	types := []string{"Colisao frontal", "Saida de pista", "Atropelamento"}

	for i := 0; i < rows; i++ {
		severity := "Sem Vítimas"
		deaths := "0"
		injured := "0"
		switch i % 3 {
		case 0:
			severity = "Com Vítimas Fatais"
			deaths = "1"
		case 1:
			severity = "Com Vítimas Feridas"
			injured = "2"
		}
		day := i%27 + 1
		hour := i % 24

		fields := []string{
			states[i%len(states)],
			"116",
			fmt.Sprintf("%d,5", i%400),
			fmt.Sprintf("%d-03-%02d", year, day),
			"segunda-feira",
			fmt.Sprintf("%02d:30:00", hour),
			causes[i%len(causes)],
			types[i%len(types)],
			severity,
			"Pleno dia",
			"Crescente",
			"Ceu Claro",
			"Simples",
			"Reta",
			"3",
			deaths,
			injured, "0", injured, "1",
			"2",
			"-23,5",
			"-46,6",
		}
		b.WriteString(strings.Join(fields, ";") + "\n")
	}

	path := filepath.Join(dir, fmt.Sprintf("datatran%d.csv", year))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
}

// testEnv builds a config, paths and operation manager over a temp base dir
// populated with two yearly extracts.
func testEnv(t *testing.T) (*config.Config, *config.Paths, *operations.Manager) {
	t.Helper()

	base := t.TempDir()
	paths, err := config.NewPaths(base)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	writeYearFile(t, paths.DataDir, 2022, 90)
	writeYearFile(t, paths.DataDir, 2023, 120)

	cfg := &config.Config{}
	cfg.Paths.BaseDir = base
	cfg.Data.DefaultYears = []int{2022, 2023}
	cfg.Data.MaxUploadBytes = 10 << 20
	cfg.Model.DefaultType = "random_forest"
	cfg.Model.TestSize = 0.2
	cfg.Model.RandomSeed = 42

	return cfg, paths, operations.NewManager(nil, nil)
}

func testContext() context.Context {
	return context.Background()
}
