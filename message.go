package psalm

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in a session's conversation history.
// IsStreaming marks the in-flight assistant response; at most one message
// per session carries the flag, and it is always cleared when the stream
// completes, errors, or is aborted.
type Message struct {
	ID          string
	Role        Role
	Content     string
	Timestamp   time.Time
	Citations   []Citation
	IsStreaming bool
}

// Citation is a source reference attached to an assistant message.
// Immutable once attached.
type Citation struct {
	ID      string
	Title   string
	URL     string
	FileID  string
	Snippet string
	Excerpt string
}

// UploadRef is a handle to a file uploaded through the transport.
type UploadRef struct {
	ID   string
	Name string
	Mime string
	Size int64
}

// NewID returns a fresh unique identifier for sessions, messages and uploads.
func NewID() string {
	return uuid.NewString()
}

// NewUserMessage creates a user message with a fresh id and current timestamp.
func NewUserMessage(content string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a system message with a fresh id and current timestamp.
func NewSystemMessage(content string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}
