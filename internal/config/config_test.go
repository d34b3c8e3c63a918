package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.String("listen", ":8080", "")
	f.String("db", "recallbox.db", "")
	f.String("log-level", "info", "")
	return f
}

func TestLoadDefaults(t *testing.T) {
	f := newFlagSet()
	require.NoError(t, f.Parse(nil))

	cfg, err := Load("", f)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "recallbox.db", cfg.DB)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9090\"\ndb: /tmp/cards.db\nlog-level: debug\n"), 0o644))

	f := newFlagSet()
	require.NoError(t, f.Parse(nil))

	cfg, err := Load(path, f)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/tmp/cards.db", cfg.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9090\"\n"), 0o644))

	f := newFlagSet()
	require.NoError(t, f.Parse([]string{"--listen", ":7070"}))

	cfg, err := Load(path, f)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Listen)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log-level: debug\n"), 0o644))

	t.Setenv("RECALLBOX_LOG_LEVEL", "warn")

	f := newFlagSet()
	require.NoError(t, f.Parse(nil))

	cfg, err := Load(path, f)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	f := newFlagSet()
	require.NoError(t, f.Parse([]string{"--log-level", "loud"}))

	_, err := Load("", f)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	f := newFlagSet()
	require.NoError(t, f.Parse(nil))

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), f)
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for level, want := range tests {
		cfg := Config{LogLevel: level}
		assert.Equal(t, want, cfg.SlogLevel())
	}
}
