package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rfdestaques/internal/errors"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml
// or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Selection.TopN)
	assert.Equal(t, 2*time.Second, cfg.Messaging.PauseBetween)
	assert.Equal(t, 10*time.Minute, cfg.Messaging.ParticipantsTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.False(t, cfg.Messaging.Configured())
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)

	yamlPath := filepath.Join(dir, "destaques.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
server:
  port: 9090
selection:
  top_n: 3
  rating_floor: "A"
messaging:
  groups:
    clientes: "120363-a"
`), 0644))

	t.Setenv("DESTAQUES_SELECTION_TOP_N", "7")
	t.Setenv("DESTAQUES_MESSAGING_PAUSE_BETWEEN", "500ms")
	t.Setenv("DESTAQUES_MESSAGING_MENTION_GROUPS", "vip,clientes")

	cfg, err := Load(yamlPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "from yaml")
	assert.Equal(t, 7, cfg.Selection.TopN, "env wins over yaml")
	assert.Equal(t, "A", cfg.Selection.RatingFloor)
	assert.Equal(t, 500*time.Millisecond, cfg.Messaging.PauseBetween)
	assert.Equal(t, []string{"vip", "clientes"}, cfg.Messaging.MentionGroups)
	assert.Equal(t, map[string]string{"clientes": "120363-a"}, cfg.Messaging.Groups)
	assert.Equal(t, "Crédito bancário", cfg.Ingestion.BankSheet, "untouched default")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DESTAQUES_MESSAGING_INSTANCE_ID=from-dotenv\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("DESTAQUES_MESSAGING_INSTANCE_ID") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Messaging.InstanceID)
}

func TestLoad_GroupsFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DESTAQUES_MESSAGING_GROUPS", "clientes:1-group,vip:2-group")
	t.Setenv("DESTAQUES_MESSAGING_INSTANCE_ID", "i")
	t.Setenv("DESTAQUES_MESSAGING_INSTANCE_TOKEN", "t")
	t.Setenv("DESTAQUES_MESSAGING_CLIENT_TOKEN", "c")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"clientes": "1-group", "vip": "2-group"}, cfg.Messaging.Groups)
	assert.True(t, cfg.Messaging.Configured())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"top n too large", "DESTAQUES_SELECTION_TOP_N", "21"},
		{"top n zero", "DESTAQUES_SELECTION_TOP_N", "0"},
		{"delay out of range", "DESTAQUES_MESSAGING_DELAY_MESSAGE", "16"},
		{"unknown timezone", "DESTAQUES_TIMEZONE", "Mars/Olympus"},
		{"bad log level", "DESTAQUES_LOGGING_LEVEL", "chatty"},
		{"unparsable int", "DESTAQUES_SERVER_PORT", "eighty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	cfg := Default()
	// 01:30 UTC on the 15th is still the 14th in São Paulo
	now := time.Date(2026, 10, 15, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), cfg.Today(now))

	cfg.Timezone = "UTC"
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), cfg.Today(now))
}

func TestPaths(t *testing.T) {
	dir := chdirTemp(t)

	p, err := GetPaths(PathsConfig{DataDir: "dados", LogsDir: filepath.Join(dir, "abs-logs")})
	require.NoError(t, err)

	// macOS resolves TempDir through /private, so compare against Getwd
	wd, _ := os.Getwd()
	assert.Equal(t, filepath.Join(wd, "dados"), p.DataDir)
	assert.Equal(t, filepath.Join(wd, "dados", "exports"), p.ExportsDir)
	assert.Equal(t, filepath.Join(dir, "abs-logs"), p.LogsDir)

	require.NoError(t, p.EnsureDirectories())
	assert.True(t, FileExists(p.ExportsDir))
	assert.True(t, FileExists(p.LogsDir))

	assert.Equal(t, filepath.Join(p.ExportsDir, "x.csv"), p.GetExportPath("x.csv"))
	up := p.GetUploadPath(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), "abcdef0123456789")
	assert.Equal(t, filepath.Join(p.DataDir, "uploads", "20261014_abcdef012345.xlsx"), up)
}
