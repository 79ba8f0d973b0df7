// Package config loads CLI-level configuration: where state lives, which
// storage driver backs it, and how logging behaves. Values come from an
// optional YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psalmlegal/psalm/kv"
)

// Config holds all CLI configuration values.
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	LogFile  string        `yaml:"log_file"`
	LogLevel string        `yaml:"log_level"`
}

// StorageConfig selects and parameterizes the kv backend.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // file, sqlite, redis
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "psalm.yaml"
	}
	return filepath.Join(home, ".config", "psalm", "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".psalm"
	}
	return filepath.Join(home, ".psalm")
}

// Load reads the config file at path (missing file is fine) and applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		Storage: StorageConfig{
			Driver: string(kv.DriverFile),
			Path:   defaultDataDir(),
		},
		LogFile:  filepath.Join(defaultDataDir(), "psalm.log"),
		LogLevel: "INFO",
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Storage.Driver = getEnv("PSALM_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Path = getEnv("PSALM_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.RedisAddr = getEnv("PSALM_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnv("PSALM_REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.LogFile = getEnv("PSALM_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("PSALM_LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// KVConfig maps the storage section to a kv driver config.
func (c Config) KVConfig() kv.Config {
	driver := kv.Driver(c.Storage.Driver)
	path := c.Storage.Path
	if driver == kv.DriverSQLite && path != "" && filepath.Ext(path) == "" {
		path = filepath.Join(path, "psalm.db")
	}
	return kv.Config{
		Driver:        driver,
		Path:          path,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
	}
}

// Level parses the configured log level.
func (c Config) Level() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
