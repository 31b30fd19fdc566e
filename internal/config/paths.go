package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations: yearly extracts live
// under DataDir, trained artifact bundles under ModelsDir, generated exports
// under ReportsDir.
type Paths struct {
	BaseDir    string
	DataDir    string
	UploadsDir string
	ModelsDir  string
	ReportsDir string
	LogsDir    string

	// Well-known files.
	CombinedDataCSV string
	CurrentModelDir string
}

// NewPaths builds the path set rooted at baseDir.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir: %w", err)
	}

	dataDir := filepath.Join(abs, "data")
	reportsDir := filepath.Join(abs, "reports")
	modelsDir := filepath.Join(abs, "models")

	return &Paths{
		BaseDir:    abs,
		DataDir:    dataDir,
		UploadsDir: filepath.Join(dataDir, "uploads"),
		ModelsDir:  modelsDir,
		ReportsDir: reportsDir,
		LogsDir:    filepath.Join(abs, "logs"),

		CombinedDataCSV: filepath.Join(reportsDir, "accidents_combined.csv"),
		CurrentModelDir: filepath.Join(modelsDir, "severity_classifier"),
	}, nil
}

// GetPaths returns the application paths for the given configuration.
func GetPaths(cfg *Config) (*Paths, error) {
	base := "."
	if cfg != nil {
		base = cfg.Paths.BaseDir
	}
	return NewPaths(base)
}

// EnsureDirectories creates all required directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.UploadsDir,
		p.ModelsDir,
		p.ReportsDir,
		p.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// YearFilePath returns the expected location of one yearly extract.
func (p *Paths) YearFilePath(year int) string {
	return filepath.Join(p.DataDir, fmt.Sprintf("datatran%d.csv", year))
}

// ReportPath returns the location of a named report file.
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}
