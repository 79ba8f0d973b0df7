package psalm

import (
	"context"
	"io"
)

// Capability names a feature a transport declares support for.
type Capability string

const (
	CapabilityChat  Capability = "chat"
	CapabilityFiles Capability = "files"
	CapabilityVoice Capability = "voice"
)

// Health reports transport reachability and declared capabilities.
type Health struct {
	OK           bool
	Capabilities []Capability
}

// ChatRequest carries the conversation history and per-request options.
// Only role and content of each message travel over the wire; auxiliary
// fields (citations, streaming flags) are stripped by the transport.
type ChatRequest struct {
	Messages     []Message
	Stream       bool
	Jurisdiction string
	Attachments  []UploadRef
}

// Stream is a lazy, cancellable sequence of assistant text fragments.
//
// Next returns fragments in arrival order. It returns io.EOF when the
// stream completes normally, ErrAborted after Abort() was observed, and
// a transport error otherwise. Reads after an abort keep returning
// ErrAborted immediately.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Transport turns chat requests into live token streams and handles the
// single-shot provider operations. Two implementations share the
// contract: a live HTTP client and an offline synthesizer, selected by
// whether connection settings are present.
type Transport interface {
	SendChat(ctx context.Context, req ChatRequest) (Stream, error)
	Health(ctx context.Context) (Health, error)
	UploadFile(ctx context.Context, name, mime string, size int64, r io.Reader) (UploadRef, error)
	TranscribeAudio(ctx context.Context, name string, r io.Reader) (string, error)

	// Abort requests cancellation of the current SendChat stream. Each
	// SendChat call scopes its own cancellation handle, so Abort never
	// affects an earlier, already-finished request.
	Abort()
}
