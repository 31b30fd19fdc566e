package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Manager performs file operations under a base directory. Writes never
// escape the base directory; file names are sanitized before use.
type Manager struct {
	basePath string
}

// NewManager creates a new file manager rooted at basePath.
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// SaveUpload streams an uploaded file into the base directory and returns the
// stored path. The name is flattened to its base component to prevent path
// traversal.
func (m *Manager) SaveUpload(name string, r io.Reader, maxBytes int64) (string, error) {
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload file name")
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return "", fmt.Errorf("only CSV uploads are accepted, got %q", name)
	}

	if err := os.MkdirAll(m.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst := filepath.Join(m.basePath, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if written > maxBytes {
		os.Remove(dst)
		return "", fmt.Errorf("upload exceeds the %d byte limit", maxBytes)
	}
	return dst, nil
}

// Install moves a stored file to dest, replacing any existing file there.
func (m *Manager) Install(name, dest string) error {
	src := filepath.Join(m.basePath, filepath.Base(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("failed to install %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a file exists under the base directory.
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(m.basePath, filepath.Base(name)))
	return err == nil
}

// Remove deletes a file under the base directory.
func (m *Manager) Remove(name string) error {
	return os.Remove(filepath.Join(m.basePath, filepath.Base(name)))
}
