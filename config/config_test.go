package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "slopeselector.yml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o600))
	return file
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SLOPESELECTOR_SYSTEM_WORKDIR", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 5, cfg.Gemini.MaxRetries)
	assert.Equal(t, time.Second, cfg.GeminiRetryDelay())
	assert.Equal(t, time.Minute, cfg.GeminiTimeout())
	assert.ElementsMatch(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Web.AllowOrigins)
	assert.DirExists(t, cfg.GetLogDir())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	workdir := t.TempDir()
	file := writeConfig(t, `
system:
  workdir: `+workdir+`
web:
  port: 9090
database:
  type: sqlite
  name: gear.db
gemini:
  model: gemini-2.5-flash
  max_retries: 3
recommend:
  history_retention_days: 30
`)
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("SLOPESELECTOR_WEB_PORT", "9191")
	t.Setenv("SLOPESELECTOR_WEB_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "gear.db", cfg.Database.Name)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.Equal(t, "from-env", cfg.Gemini.ApiKey)
	assert.Equal(t, 30, cfg.Recommend.HistoryRetentionDays)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Web.AllowOrigins)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("SLOPESELECTOR_SYSTEM_WORKDIR", t.TempDir())

	file := writeConfig(t, "database:\n  type: oracle\n")
	_, err := LoadConfig(file)
	assert.ErrorContains(t, err, "unsupported database type")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultAppConfig()
	require.NoError(t, cfg.Validate())

	cfg.Gemini.MaxRetries = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultAppConfig()
	cfg.Recommend.HistoryRetentionDays = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultAppConfig()
	cfg.Web.TrustedProxies = []string{"10.0.0.0/8", "not-a-cidr"}
	assert.ErrorContains(t, cfg.Validate(), "trusted_proxies")
}
