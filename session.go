package psalm

import "time"

// Session represents one chat conversation thread.
type Session struct {
	ID             string
	Title          string
	Messages       []Message
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Jurisdiction   string
	SystemPrompt   string
	PrefillContent string
	Attachments    []UploadRef
}

// State is the full persisted application state: every session plus the
// pointer to the active one (empty when no session is selected).
type State struct {
	Sessions         []Session
	CurrentSessionID string
}

// Clone returns a deep copy of the session. Mutating the copy never
// affects the original.
func (s Session) Clone() Session {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		for i, m := range s.Messages {
			out.Messages[i] = m.clone()
		}
	}
	if s.Attachments != nil {
		out.Attachments = append([]UploadRef(nil), s.Attachments...)
	}
	return out
}

func (m Message) clone() Message {
	out := m
	if m.Citations != nil {
		out.Citations = append([]Citation(nil), m.Citations...)
	}
	return out
}

// Empty reports whether the session is a throwaway blank: no messages at
// all, or exactly one system-role message seeded by a preset.
func (s Session) Empty() bool {
	switch len(s.Messages) {
	case 0:
		return true
	case 1:
		return s.Messages[0].Role == RoleSystem
	default:
		return false
	}
}
