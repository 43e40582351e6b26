package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfdestaques/internal/config"
)

func touch(t *testing.T, dir, name string, mod time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFindWorkbooks(t *testing.T) {
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "only workbooks",
			files:    []string{"a.xlsx", "b.XLSX", "c.xlsm"},
			expected: []string{"a.xlsx", "b.XLSX", "c.xlsm"},
		},
		{
			name:     "mixed file types",
			files:    []string{"a.xlsx", "data.csv", "old.xls", "doc.pdf"},
			expected: []string{"a.xlsx"},
		},
		{
			name:     "lock files skipped",
			files:    []string{"~$a.xlsx", "a.xlsx"},
			expected: []string{"a.xlsx"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for i, name := range tt.files {
				touch(t, dir, name, base.Add(time.Duration(i)*time.Minute))
			}

			found, err := NewDiscovery(dir).FindWorkbooks(".")
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
			}
			assert.ElementsMatch(t, tt.expected, names)
		})
	}
}

func TestLatestWorkbook(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	touch(t, dir, "segunda.xlsx", base)
	touch(t, dir, "terca.xlsx", base.Add(24*time.Hour))
	touch(t, dir, "notes.csv", base.Add(48*time.Hour))

	latest, err := NewDiscovery("").LatestWorkbook(dir)
	require.NoError(t, err)
	assert.Equal(t, "terca.xlsx", latest.Name)
	assert.Equal(t, filepath.Join(dir, "terca.xlsx"), latest.Path)

	_, err = NewDiscovery("").LatestWorkbook(t.TempDir())
	assert.Error(t, err)

	_, err = NewDiscovery("").LatestWorkbook(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	assert.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}

func TestManager_ArchiveUpload(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{
		WorkingDir: dir,
		DataDir:    filepath.Join(dir, "data"),
		ExportsDir: filepath.Join(dir, "data", "exports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	m := NewManager(paths, nil)

	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	path, err := m.ArchiveUpload(date, "abcdef0123456789", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "uploads", "20261014_abcdef012345.xlsx"), path)

	again, err := m.ArchiveUpload(date, "abcdef0123456789", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, path, again)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content), "existing archive is kept")

	leftovers, err := filepath.Glob(filepath.Join(dir, "data", "uploads", ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestManager_ListExports(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{ExportsDir: filepath.Join(dir, "exports")}
	m := NewManager(paths, nil)

	found, err := m.ListExports()
	require.NoError(t, err)
	assert.Empty(t, found, "directory is created on demand")

	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	touch(t, paths.ExportsDir, "top_ativos_credito_bancario_20261014_0930.csv", base)
	touch(t, paths.ExportsDir, "top_ativos_credito_bancario_20261014_0930.xlsx", base.Add(time.Second))
	touch(t, paths.ExportsDir, "readme.txt", base)

	found, err = m.ListExports()
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "top_ativos_credito_bancario_20261014_0930.csv", found[0].Name)
}
