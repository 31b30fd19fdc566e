package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFindYearFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "datatran2023.csv", "a")
	writeFile(t, dir, "datatran2021.csv", "bb")
	writeFile(t, dir, "DATATRAN2022.CSV", "ccc")
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, "extra.csv", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "datatran2020.csv", "hidden")

	found, err := NewDiscovery(dir).FindYearFiles()
	require.NoError(t, err)
	require.Len(t, found, 3)

	// Sorted by year; the nested file and non-extract names are skipped.
	assert.Equal(t, 2021, found[0].Year)
	assert.Equal(t, 2022, found[1].Year)
	assert.Equal(t, 2023, found[2].Year)
	assert.Equal(t, "datatran2021.csv", found[0].Name)
	assert.Equal(t, int64(2), found[0].Size)
	assert.Equal(t, filepath.Join(dir, "datatran2021.csv"), found[0].Path)
}

func TestFindYearFilesMissingDirectory(t *testing.T) {
	_, err := NewDiscovery(filepath.Join(t.TempDir(), "absent")).FindYearFiles()
	assert.Error(t, err)
}

func TestYearOf(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"datatran2023.csv", 2023},
		{"DATATRAN2020.CSV", 2020},
		{"/some/dir/datatran2019.csv", 2019},
		{"extra.csv", 0},
		{"datatran20.csv", 0},
		{"datatran2023.zip", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YearOf(tt.name), tt.name)
	}
}
