// Package mock provides test doubles for psalm interfaces using function fields.
package mock

import (
	"context"
	"io"

	"github.com/psalmlegal/psalm"
)

// Interface compliance checks.
var (
	_ psalm.Transport = (*Transport)(nil)
	_ psalm.Stream    = (*Stream)(nil)
)

// Transport is a test double for psalm.Transport.
// Set the function fields for the methods you need. SendChatFn panics
// when nil to catch missing setup; the remaining methods are nil-safe
// because most tests exercise only the streaming path.
type Transport struct {
	SendChatFn        func(ctx context.Context, req psalm.ChatRequest) (psalm.Stream, error)
	HealthFn          func(ctx context.Context) (psalm.Health, error)
	UploadFileFn      func(ctx context.Context, name, mime string, size int64, r io.Reader) (psalm.UploadRef, error)
	TranscribeAudioFn func(ctx context.Context, name string, r io.Reader) (string, error)
	AbortFn           func()
}

// SendChat delegates to SendChatFn.
func (t *Transport) SendChat(ctx context.Context, req psalm.ChatRequest) (psalm.Stream, error) {
	return t.SendChatFn(ctx, req)
}

// Health delegates to HealthFn. Reports OK when HealthFn is nil.
func (t *Transport) Health(ctx context.Context) (psalm.Health, error) {
	if t.HealthFn == nil {
		return psalm.Health{OK: true}, nil
	}
	return t.HealthFn(ctx)
}

// UploadFile delegates to UploadFileFn.
func (t *Transport) UploadFile(ctx context.Context, name, mime string, size int64, r io.Reader) (psalm.UploadRef, error) {
	if t.UploadFileFn == nil {
		return psalm.UploadRef{ID: "mock", Name: name, Mime: mime, Size: size}, nil
	}
	return t.UploadFileFn(ctx, name, mime, size, r)
}

// TranscribeAudio delegates to TranscribeAudioFn.
func (t *Transport) TranscribeAudio(ctx context.Context, name string, r io.Reader) (string, error) {
	if t.TranscribeAudioFn == nil {
		return "", nil
	}
	return t.TranscribeAudioFn(ctx, name, r)
}

// Abort delegates to AbortFn. No-op when nil.
func (t *Transport) Abort() {
	if t.AbortFn != nil {
		t.AbortFn()
	}
}

// Stream is a test double for psalm.Stream.
// NextFn panics when nil; CloseFn is nil-safe because test code commonly
// calls defer stream.Close().
type Stream struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ScriptStream returns a Stream that yields the given fragments in order
// and then the terminal error (io.EOF for normal completion).
func ScriptStream(terminal error, fragments ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (string, error) {
			if i < len(fragments) {
				f := fragments[i]
				i++
				return f, nil
			}
			if terminal == nil {
				return "", io.EOF
			}
			return "", terminal
		},
	}
}
