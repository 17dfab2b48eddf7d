package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/internal/logging"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"JOURNAL_LISTEN_ADDR", "JOURNAL_DATABASE_URL", "JOURNAL_PER_PAGE",
		"JOURNAL_AUTH_USER", "JOURNAL_AUTH_PASS", "JOURNAL_AUTH_FILE",
		"JOURNAL_SESSION_TTL", "JOURNAL_DB_BUSY_TIMEOUT", "JOURNAL_DB_LOCK_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "journal.sqlite", cfg.DatabaseURL)
	assert.Equal(t, 10, cfg.PerPage)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.DBBusyTimeout)
	assert.Equal(t, 2*time.Second, cfg.DBLockTimeout)
}

func TestFromEnvOverridesAndIgnoresInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOURNAL_PER_PAGE", "2")
	t.Setenv("JOURNAL_SESSION_TTL", "1h")
	t.Setenv("JOURNAL_DB_LOCK_TIMEOUT", "soon")
	t.Setenv("JOURNAL_DATABASE_URL", "postgres://localhost/corpus")
	cfg := FromEnv()
	assert.Equal(t, 2, cfg.PerPage)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.DBLockTimeout)
	assert.Equal(t, "postgres://localhost/corpus", cfg.DatabaseURL)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, envFileName),
		[]byte("JOURNAL_LISTEN_ADDR=0.0.0.0:9000\nJOURNAL_PER_PAGE=25\n"), 0o600))
	t.Setenv("JOURNAL_PER_PAGE", "3")
	// godotenv only fills unset variables; t.Setenv("") leaves them set but empty.
	require.NoError(t, os.Unsetenv("JOURNAL_LISTEN_ADDR"))
	t.Chdir(dir)

	cfg := Load()
	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, 3, cfg.PerPage)
}

func TestLoadEnvFileProvidesLogSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, envFileName),
		[]byte("JOURNAL_DEBUG_LEVEL=debug\nJOURNAL_LOG_PRETTY=1\n"), 0o600))
	for _, key := range []string{"JOURNAL_DEBUG_LEVEL", "JOURNAL_LOG_PRETTY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(dir)

	LoadEnvFile()
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel(os.Getenv("JOURNAL_DEBUG_LEVEL")).Level())
	assert.Equal(t, "1", os.Getenv("JOURNAL_LOG_PRETTY"))
}
