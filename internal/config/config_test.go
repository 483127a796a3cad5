package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123:abc")
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")

	path := writeConfig(t, `
telegram:
  bot_token: ${TEST_BOT_TOKEN}
database:
  path: `+dbPath+`
scheduler:
  check_interval_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, dbPath, cfg.Database.Path)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval())

	// Database directory is created on load.
	_, err = os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
}

func TestSchedulerDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, time.Minute, cfg.CheckInterval())
	assert.Equal(t, 15*time.Minute, cfg.EchoOffset())
	assert.Equal(t, time.Hour, cfg.EchoExpiration())
	assert.Equal(t, 10*time.Minute, cfg.TimezoneCacheTTL())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
