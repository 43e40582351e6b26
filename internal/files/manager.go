package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rfdestaques/internal/config"
)

// Manager stores uploaded workbooks and other generated files
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "file_manager")),
	}
}

// ArchiveUpload keeps a copy of an uploaded workbook. The name is derived
// from the reference date and the content hash, so re-uploading the same
// file is a no-op.
func (m *Manager) ArchiveUpload(date time.Time, hash string, data []byte) (string, error) {
	path := m.paths.GetUploadPath(date, hash)
	if m.FileExists(path) {
		m.logger.Debug("Upload already archived", slog.String("path", path))
		return path, nil
	}
	if err := m.WriteFile(path, data); err != nil {
		return "", err
	}
	m.logger.Info("Upload archived",
		slog.String("path", path),
		slog.Int("size_bytes", len(data)))
	return path, nil
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFile writes data through a temporary file and a rename, creating
// the parent directory when needed
func (m *Manager) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// ListExports lists the files in the exports directory, oldest first
func (m *Manager) ListExports() ([]FileInfo, error) {
	if err := os.MkdirAll(m.paths.ExportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	return NewDiscovery("").FindExports(m.paths.ExportsDir)
}
