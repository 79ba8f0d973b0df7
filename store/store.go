// Package store holds all chat sessions and the current-session pointer.
// It is the single source of truth: every mutation is atomic with respect
// to readers, and each one is written through to durable storage on a
// best-effort basis: a failed write is logged and never blocks or rolls
// back the in-memory state.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/psalmlegal/psalm"
	statejson "github.com/psalmlegal/psalm/json"
	"github.com/psalmlegal/psalm/kv"
)

// DefaultTitle is the title of a session before derivation.
const DefaultTitle = "New Chat"

// titleLimit is the maximum derived-title length in runes.
const titleLimit = 50

// Store is the in-process container for chat sessions.
type Store struct {
	mu         sync.Mutex
	sessions   []psalm.Session // newest first
	current    string          // "" = none
	generating map[string]bool

	kv     kv.Store
	logger *slog.Logger
}

// New creates a Store persisting through the given kv backend. A nil
// logger falls back to slog.Default().
func New(kvs kv.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		generating: make(map[string]bool),
		kv:         kvs,
		logger:     logger,
	}
}

// Rehydrate loads persisted state. A missing blob starts fresh; a corrupt
// or unreadable one is logged and discarded.
func (s *Store) Rehydrate(ctx context.Context) {
	data, ok, err := s.kv.Get(ctx, statejson.StateKey)
	if err != nil {
		s.logger.Error("load state", "error", err)
		return
	}
	if !ok {
		return
	}
	state, err := statejson.UnmarshalState(data)
	if err != nil {
		s.logger.Error("decode state, starting fresh", "error", err)
		return
	}
	// A crash mid-generation persists the streaming flag; nothing resumes
	// a stream across restarts, so clear it on load.
	for i := range state.Sessions {
		for j := range state.Sessions[i].Messages {
			state.Sessions[i].Messages[j].IsStreaming = false
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = state.Sessions
	s.current = state.CurrentSessionID
}

// persist writes the full state through the kv backend. Called with the
// lock held; errors are logged, never propagated.
func (s *Store) persist() {
	state := psalm.State{Sessions: s.sessions, CurrentSessionID: s.current}
	data, err := statejson.MarshalState(state)
	if err != nil {
		s.logger.Error("encode state", "error", err)
		return
	}
	if err := s.kv.Set(context.Background(), statejson.StateKey, data); err != nil {
		s.logger.Error("persist state", "error", err)
	}
}

func (s *Store) find(id string) *psalm.Session {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

// CreateSession returns a session id ready for use and makes it current.
//
// With a nil preset it reuses an existing empty session (no messages, or
// a single system message) when one exists, so repeated "new chat"
// clicks don't accumulate blanks. A non-nil preset, even a zero-valued
// one, always forces a fresh session, seeded with a system message when
// preset.System is non-empty.
func (s *Store) CreateSession(preset *psalm.Preset) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if preset == nil {
		for i := range s.sessions {
			if s.sessions[i].Empty() {
				s.current = s.sessions[i].ID
				s.persist()
				return s.sessions[i].ID
			}
		}
	}

	now := time.Now()
	sess := psalm.Session{
		ID:        psalm.NewID(),
		Title:     DefaultTitle,
		Messages:  []psalm.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if preset != nil {
		sess.Jurisdiction = preset.Jurisdiction
		sess.SystemPrompt = preset.System
		sess.PrefillContent = preset.Prefill
		if preset.System != "" {
			sess.Messages = []psalm.Message{psalm.NewSystemMessage(preset.System)}
		}
	}

	s.sessions = append([]psalm.Session{sess}, s.sessions...)
	s.current = sess.ID
	s.persist()
	return sess.ID
}

// DeleteSession removes a session. If it was current, the pointer is
// cleared; selecting another session is the caller's responsibility.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			if s.current == id {
				s.current = ""
			}
			delete(s.generating, id)
			s.persist()
			return nil
		}
	}
	return psalm.ErrSessionNotFound
}

// RenameSession sets the title verbatim.
func (s *Store) RenameSession(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	sess.Title = title
	sess.UpdatedAt = time.Now()
	s.persist()
	return nil
}

// AppendMessage appends to the tail of the session's history. The first
// non-system user message derives the session title: the first 50 runes
// of its content, with "…" appended when truncated. Derivation always
// overwrites, including a manually renamed title.
func (s *Store) AppendMessage(id string, msg psalm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	if msg.Role == psalm.RoleUser && countNonSystem(sess.Messages) == 0 {
		sess.Title = deriveTitle(msg.Content)
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now()
	s.persist()
	return nil
}

func countNonSystem(msgs []psalm.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role != psalm.RoleSystem {
			n++
		}
	}
	return n
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "…"
}

// Update describes a shallow merge of session fields. Nil pointer fields
// are left untouched; a non-nil Messages slice replaces the history
// wholesale (the operation streaming callers use to splice token updates
// into the placeholder message).
type Update struct {
	Title          *string
	Messages       []psalm.Message
	Jurisdiction   *string
	SystemPrompt   *string
	PrefillContent *string
	Attachments    []psalm.UploadRef
}

// UpdateSession applies a shallow merge and bumps UpdatedAt.
func (s *Store) UpdateSession(id string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	if upd.Title != nil {
		sess.Title = *upd.Title
	}
	if upd.Messages != nil {
		sess.Messages = upd.Messages
	}
	if upd.Jurisdiction != nil {
		sess.Jurisdiction = *upd.Jurisdiction
	}
	if upd.SystemPrompt != nil {
		sess.SystemPrompt = *upd.SystemPrompt
	}
	if upd.PrefillContent != nil {
		sess.PrefillContent = *upd.PrefillContent
	}
	if upd.Attachments != nil {
		sess.Attachments = upd.Attachments
	}
	sess.UpdatedAt = time.Now()
	s.persist()
	return nil
}

// DeleteMessage removes a message by id.
func (s *Store) DeleteMessage(sessionID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages = append(sess.Messages[:i], sess.Messages[i+1:]...)
			sess.UpdatedAt = time.Now()
			s.persist()
			return nil
		}
	}
	return psalm.ErrMessageNotFound
}

// EditMessage replaces a message's content and timestamp. It does not
// trigger regeneration; that is a separate explicit call.
func (s *Store) EditMessage(sessionID, messageID, newContent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Content = newContent
			sess.Messages[i].Timestamp = time.Now()
			sess.UpdatedAt = time.Now()
			s.persist()
			return nil
		}
	}
	return psalm.ErrMessageNotFound
}

// RegenerateMessage resets an assistant message to an empty streaming
// placeholder so a fresh response can be streamed into it.
func (s *Store) RegenerateMessage(sessionID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(sessionID)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	for i := range sess.Messages {
		if sess.Messages[i].ID == messageID {
			sess.Messages[i].Content = ""
			sess.Messages[i].IsStreaming = true
			sess.UpdatedAt = time.Now()
			s.persist()
			return nil
		}
	}
	return psalm.ErrMessageNotFound
}

// ClearMessages empties a session's history.
func (s *Store) ClearMessages(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	sess.Messages = []psalm.Message{}
	sess.UpdatedAt = time.Now()
	s.persist()
	return nil
}

// SetJurisdiction sets the session's jurisdiction code.
func (s *Store) SetJurisdiction(id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.ErrSessionNotFound
	}
	sess.Jurisdiction = code
	sess.UpdatedAt = time.Now()
	s.persist()
	return nil
}

// DuplicateSession copies a session's non-system messages with fresh ids
// and timestamps into a new session sharing the same system prompt and
// jurisdiction. The copy becomes current.
func (s *Store) DuplicateSession(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.find(id)
	if src == nil {
		return "", psalm.ErrSessionNotFound
	}

	now := time.Now()
	dup := psalm.Session{
		ID:           psalm.NewID(),
		Title:        DefaultTitle,
		Messages:     []psalm.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
		Jurisdiction: src.Jurisdiction,
		SystemPrompt: src.SystemPrompt,
	}
	if src.SystemPrompt != "" {
		dup.Messages = append(dup.Messages, psalm.NewSystemMessage(src.SystemPrompt))
	}
	for _, m := range src.Messages {
		if m.Role == psalm.RoleSystem {
			continue
		}
		cp := m
		cp.ID = psalm.NewID()
		cp.Timestamp = now
		if cp.Role == psalm.RoleUser && countNonSystem(dup.Messages) == 0 {
			dup.Title = deriveTitle(cp.Content)
		}
		dup.Messages = append(dup.Messages, cp)
	}

	s.sessions = append([]psalm.Session{dup}, s.sessions...)
	s.current = dup.ID
	s.persist()
	return dup.ID, nil
}

// ClearAll removes every session and clears the current pointer.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	s.current = ""
	s.generating = make(map[string]bool)
	s.persist()
}

// SetCurrent sets the current-session pointer; empty clears it.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" && s.find(id) == nil {
		return psalm.ErrSessionNotFound
	}
	s.current = id
	s.persist()
	return nil
}

// CurrentID returns the current-session pointer ("" when unset).
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Current returns a copy of the current session.
func (s *Store) Current() (psalm.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return psalm.Session{}, false
	}
	sess := s.find(s.current)
	if sess == nil {
		return psalm.Session{}, false
	}
	return sess.Clone(), true
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (psalm.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.find(id)
	if sess == nil {
		return psalm.Session{}, false
	}
	return sess.Clone(), true
}

// Sessions returns copies of all sessions, newest first.
func (s *Store) Sessions() []psalm.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]psalm.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// BeginGeneration marks the session as having an in-flight generation.
// A second overlapping request for the same session is rejected, so
// token write-backs never race.
func (s *Store) BeginGeneration(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return psalm.ErrSessionNotFound
	}
	if s.generating[id] {
		return psalm.ErrGenerationInFlight
	}
	s.generating[id] = true
	return nil
}

// EndGeneration releases the in-flight mark.
func (s *Store) EndGeneration(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generating, id)
}

// Generating reports whether the session has an in-flight generation.
func (s *Store) Generating(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating[id]
}
