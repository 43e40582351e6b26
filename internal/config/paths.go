package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains the resolved application directories
type Paths struct {
	WorkingDir string
	DataDir    string
	ExportsDir string
	LogsDir    string
}

// GetPaths resolves the configured directories to absolute paths.
// Relative entries are taken from the working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(wd, p)
	}

	data := resolve(cfg.DataDir, DefaultDataDir)
	return &Paths{
		WorkingDir: wd,
		DataDir:    data,
		ExportsDir: resolve(cfg.ExportsDir, filepath.Join(data, "exports")),
		LogsDir:    resolve(cfg.LogsDir, DefaultLogsDir),
	}, nil
}

// EnsureDirectories creates all necessary directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.ExportsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetExportPath returns the path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetUploadPath returns where an uploaded workbook for date is archived
func (p *Paths) GetUploadPath(date time.Time, hash string) string {
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	return filepath.Join(p.DataDir, "uploads", fmt.Sprintf("%s_%s.xlsx", date.Format("20060102"), short))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved directories
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("data", p.DataDir),
			slog.String("exports", p.ExportsDir),
			slog.String("logs", p.LogsDir),
		))
}
