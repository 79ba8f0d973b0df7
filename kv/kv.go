// Package kv provides the durable key-value storage port used for
// persisted application state, with file, sqlite, redis and in-memory
// drivers selected by configuration.
package kv

import (
	"context"
	"errors"
)

// Driver names a storage backend.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Sentinel errors.
var (
	ErrInvalidDriver = errors.New("kv: invalid driver")
	ErrInvalidConfig = errors.New("kv: invalid config")
)

// Store is a durable key-value blob store. Get reports ok=false when the
// key is absent; absence is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and parameterizes a driver.
type Config struct {
	Driver Driver

	// Path is the storage directory (file driver) or database file
	// (sqlite driver).
	Path string

	// Redis connection parameters.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates a Store for the configured driver.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFile, "":
		if cfg.Path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFile(cfg.Path), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, ErrInvalidConfig
		}
		return OpenSQLite(cfg.Path)
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, ErrInvalidConfig
		}
		return NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, ErrInvalidDriver
	}
}
