package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LEDGER_HTTP_PORT", "LEDGER_LOG_LEVEL", "LEDGER_LOG_FORMAT", "LEDGER_HTTP_MAX_INFLIGHT",
		"LEDGER_SHUTDOWN_TIMEOUT", "LEDGER_KAFKA_BROKERS", "LEDGER_KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 64, cfg.MaxInflight)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "ledger-events", cfg.KafkaTopic)
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("LEDGER_HTTP_PORT", "9090")
	t.Setenv("LEDGER_LOG_LEVEL", "DEBUG")
	t.Setenv("LEDGER_HTTP_MAX_INFLIGHT", "8")
	t.Setenv("LEDGER_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("LEDGER_KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 8, cfg.MaxInflight)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("LEDGER_HTTP_MAX_INFLIGHT", "-3")
	t.Setenv("LEDGER_SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 64, cfg.MaxInflight)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("LEDGER_KAFKA_TOPIC")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_KAFKA_TOPIC=from-dotenv\n"), 0o600))
	chdir(t, dir)
	t.Cleanup(func() { os.Unsetenv("LEDGER_KAFKA_TOPIC") })

	cfg := Load()

	assert.Equal(t, "from-dotenv", cfg.KafkaTopic)
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
