// Package settings manages the connection settings surface and the
// admin-unlock latch, both persisted through the kv store.
package settings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/psalmlegal/psalm"
	statejson "github.com/psalmlegal/psalm/json"
	"github.com/psalmlegal/psalm/kv"
)

// Manager loads and saves connection settings. Read failures fall back
// to defaults; the running configuration is always usable.
type Manager struct {
	kv     kv.Store
	logger *slog.Logger
}

// New creates a Manager. A nil logger falls back to slog.Default().
func New(kvs kv.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{kv: kvs, logger: logger}
}

// Load returns the persisted settings merged over defaults.
func (m *Manager) Load(ctx context.Context) psalm.Settings {
	defaults := psalm.DefaultSettings()
	data, ok, err := m.kv.Get(ctx, statejson.SettingsKey)
	if err != nil {
		m.logger.Error("load settings", "error", err)
		return defaults
	}
	if !ok {
		return defaults
	}
	s, err := statejson.UnmarshalSettings(data)
	if err != nil {
		m.logger.Error("decode settings, using defaults", "error", err)
		return defaults
	}
	// Zero-valued tuning fields fall back to defaults.
	if s.Model == "" {
		s.Model = defaults.Model
	}
	if s.MaxTokens == 0 {
		s.MaxTokens = defaults.MaxTokens
	}
	if s.Timeout == 0 {
		s.Timeout = defaults.Timeout
	}
	return s
}

// Save persists the settings.
func (m *Manager) Save(ctx context.Context, s psalm.Settings) error {
	data, err := statejson.MarshalSettings(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := m.kv.Set(ctx, statejson.SettingsKey, data); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// Reset removes persisted settings, reverting to defaults.
func (m *Manager) Reset(ctx context.Context) error {
	return m.kv.Delete(ctx, statejson.SettingsKey)
}

// AdminUnlocked reports whether the admin latch is set. The latch is the
// literal string "true" under its own key, separate from session data.
func (m *Manager) AdminUnlocked(ctx context.Context) bool {
	data, ok, err := m.kv.Get(ctx, statejson.AdminUnlockKey)
	if err != nil {
		m.logger.Error("read admin latch", "error", err)
		return false
	}
	return ok && string(data) == "true"
}

// Unlock verifies the passphrase against the stored digest and sets the
// latch on success.
func (m *Manager) Unlock(ctx context.Context, passphrase, wantDigestHex string) (bool, error) {
	sum := sha256.Sum256([]byte(passphrase))
	if hex.EncodeToString(sum[:]) != wantDigestHex {
		return false, nil
	}
	if err := m.kv.Set(ctx, statejson.AdminUnlockKey, []byte("true")); err != nil {
		return false, fmt.Errorf("set admin latch: %w", err)
	}
	return true, nil
}

// Lock clears the admin latch.
func (m *Manager) Lock(ctx context.Context) error {
	return m.kv.Delete(ctx, statejson.AdminUnlockKey)
}
