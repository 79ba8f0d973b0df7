package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/psalmlegal/psalm/config"
	"github.com/psalmlegal/psalm/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, string(kv.DriverFile), cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.NotEmpty(t, cfg.LogFile)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  path: /tmp/psalm-test
log_level: debug
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/psalm-test", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [not a map"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: file\n"), 0o644))

	t.Setenv("PSALM_STORAGE_DRIVER", "redis")
	t.Setenv("PSALM_REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
}

func TestKVConfig_SQLiteDirGetsFilename(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{
		Driver: "sqlite",
		Path:   "/var/lib/psalm",
	}}

	kvCfg := cfg.KVConfig()
	assert.Equal(t, kv.DriverSQLite, kvCfg.Driver)
	assert.Equal(t, filepath.Join("/var/lib/psalm", "psalm.db"), kvCfg.Path)
}

func TestKVConfig_ExplicitDBPathKept(t *testing.T) {
	cfg := config.Config{Storage: config.StorageConfig{
		Driver: "sqlite",
		Path:   "/var/lib/psalm/state.db",
	}}

	assert.Equal(t, "/var/lib/psalm/state.db", cfg.KVConfig().Path)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := config.Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.Level(), "level %q", tt.in)
	}
}
