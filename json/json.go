// Package json implements the versioned persistence codec for the
// application state blob and connection settings. Dates are encoded as
// ISO-8601 strings and restored to time.Time on decode.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/psalmlegal/psalm"
)

// Storage keys. StateKey and SettingsKey are schema-versioned;
// AdminUnlockKey is a simple unlock latch holding the literal "true".
const (
	StateKey       = "psalm_chats_v1"
	SettingsKey    = "psalm_settings_v1"
	AdminUnlockKey = "adminUnlocked"
)

// Version is the current state envelope version.
const Version = 1

// envelope is the v1 wire format for persisted state.
type envelope struct {
	State   stateDTO `json:"state"`
	Version int      `json:"version"`
}

type stateDTO struct {
	Sessions         []sessionDTO `json:"sessions"`
	CurrentSessionID *string      `json:"currentSessionId"`
}

// MarshalState serializes application state in v1 envelope format.
func MarshalState(s psalm.State) ([]byte, error) {
	env := envelope{Version: Version}
	env.State.Sessions = make([]sessionDTO, len(s.Sessions))
	for i, sess := range s.Sessions {
		env.State.Sessions[i] = marshalSession(sess)
	}
	if s.CurrentSessionID != "" {
		id := s.CurrentSessionID
		env.State.CurrentSessionID = &id
	}
	return json.Marshal(env)
}

// UnmarshalState deserializes application state from v1 envelope format.
func UnmarshalState(data []byte) (psalm.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return psalm.State{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != Version {
		return psalm.State{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	out := psalm.State{Sessions: make([]psalm.Session, len(env.State.Sessions))}
	for i, dto := range env.State.Sessions {
		out.Sessions[i] = unmarshalSession(dto)
	}
	if env.State.CurrentSessionID != nil {
		out.CurrentSessionID = *env.State.CurrentSessionID
	}
	return out, nil
}
