// Package files provides discovery and management of the yearly accident
// extract files in the data directory.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// yearFilePattern matches the agency's yearly export naming, e.g. datatran2023.csv.
var yearFilePattern = regexp.MustCompile(`^datatran(\d{4})\.csv$`)

// FileInfo represents information about a discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	Year    int // 0 when the file is not a yearly extract
}

// Discovery provides file discovery operations rooted at a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindYearFiles finds all yearly extracts in the base directory, sorted by year.
func (d *Discovery) FindYearFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.basePath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := yearFilePattern.FindStringSubmatch(strings.ToLower(entry.Name()))
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(d.basePath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Year:    year,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Year < files[j].Year
	})
	return files, nil
}

// YearOf extracts the year from a yearly extract file name, or 0.
func YearOf(name string) int {
	m := yearFilePattern.FindStringSubmatch(strings.ToLower(filepath.Base(name)))
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}
