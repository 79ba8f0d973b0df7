// Package offline implements [psalm.Transport] without a network. It
// synthesizes responses locally so the product runs fully unconfigured,
// behind the same contract as the live client.
package offline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/psalmlegal/psalm"
)

const chatResponse = "This service is not configured yet. Please set up your backend API " +
	"endpoint in the Admin Settings to enable AI-powered legal assistance."

const transcriptionResponse = "This service is not configured yet. Please set up your backend API " +
	"endpoint in Admin Settings to enable speech-to-text."

// Interface compliance check.
var _ psalm.Transport = (*Client)(nil)

// Client synthesizes assistant output locally. The canned response is
// emitted rune by rune on a ticker so streaming UI paths behave the same
// as against a live endpoint.
type Client struct {
	// TickInterval is the delay between emitted runes. Zero means the
	// default; tests set it low to keep runs fast.
	TickInterval time.Duration

	// HealthDelay simulates probe latency.
	HealthDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates an offline client with production pacing.
func New() *Client {
	return &Client{
		TickInterval: 30 * time.Millisecond,
		HealthDelay:  500 * time.Millisecond,
	}
}

// Abort requests cancellation of the current SendChat stream.
func (c *Client) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// SendChat returns a stream of the canned response. A fresh cancellation
// handle is scoped to this call.
func (c *Client) SendChat(ctx context.Context, req psalm.ChatRequest) (psalm.Stream, error) {
	callCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	interval := c.TickInterval
	if interval <= 0 {
		interval = 30 * time.Millisecond
	}

	if !req.Stream {
		return &stream{ctx: callCtx, cancel: cancel, runes: []rune{}, whole: chatResponse}, nil
	}
	return &stream{ctx: callCtx, cancel: cancel, runes: []rune(chatResponse), interval: interval}, nil
}

// Health reports full capabilities after a short simulated delay.
func (c *Client) Health(ctx context.Context) (psalm.Health, error) {
	select {
	case <-time.After(c.HealthDelay):
	case <-ctx.Done():
		return psalm.Health{OK: false}, ctx.Err()
	}
	return psalm.Health{
		OK:           true,
		Capabilities: []psalm.Capability{psalm.CapabilityChat, psalm.CapabilityFiles, psalm.CapabilityVoice},
	}, nil
}

// UploadFile validates the attachment and synthesizes a handle.
func (c *Client) UploadFile(ctx context.Context, name, mime string, size int64, r io.Reader) (psalm.UploadRef, error) {
	if err := psalm.ValidateUpload(name, mime, size); err != nil {
		return psalm.UploadRef{}, err
	}
	return psalm.UploadRef{ID: psalm.NewID(), Name: name, Mime: mime, Size: size}, nil
}

// TranscribeAudio returns the canned transcription hint.
func (c *Client) TranscribeAudio(ctx context.Context, name string, r io.Reader) (string, error) {
	return transcriptionResponse, nil
}

// stream emits the canned response one rune at a time. The cancellation
// signal is checked before each emission.
type stream struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runes    []rune
	whole    string // non-streaming mode: delivered as one fragment
	interval time.Duration
	pos      int
	wholeOut bool
	err      error
}

// Interface compliance check.
var _ psalm.Stream = (*stream)(nil)

func (s *stream) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.ctx.Err() != nil {
		s.err = psalm.ErrAborted
		return "", s.err
	}

	if s.whole != "" && !s.wholeOut {
		s.wholeOut = true
		return s.whole, nil
	}
	if s.pos >= len(s.runes) {
		s.err = io.EOF
		return "", s.err
	}

	select {
	case <-time.After(s.interval):
	case <-s.ctx.Done():
		s.err = psalm.ErrAborted
		return "", s.err
	}

	r := string(s.runes[s.pos])
	s.pos++
	return r, nil
}

func (s *stream) Close() error {
	s.cancel()
	if s.err == nil {
		s.err = psalm.ErrStreamClosed
	}
	return nil
}
