// Package chat orchestrates a single exchange: append the user message,
// stream the assistant response into a placeholder, and finalize it on
// completion, error, or abort. No code path leaves a message streaming.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/store"
)

// User-facing terminal strings for failed or stopped generations.
const (
	// StoppedSuffix is appended to whatever content accumulated before a
	// mid-stream abort.
	StoppedSuffix = "\n\n[Generation stopped]"

	// StoppedMessage replaces content when the request was aborted
	// before any token arrived.
	StoppedMessage = "Generation stopped by user."

	// ErrorMessage replaces content on a transport failure.
	ErrorMessage = "Sorry, I encountered an error. Please check your connection and try again."

	// RegenStoppedMessage replaces content when a regeneration is
	// aborted. Unlike Send, an aborted regeneration discards partial
	// content rather than keeping it with a suffix.
	RegenStoppedMessage = "Regeneration stopped by user."

	// RegenErrorMessage replaces content when a regeneration fails.
	RegenErrorMessage = "Sorry, I encountered an error while regenerating. Please try again."
)

// finalization selects the terminal strings for one generation. suffix
// is appended to accumulated content on a mid-stream abort; when empty,
// stopped replaces the content instead.
type finalization struct {
	stopped string
	suffix  string
	errMsg  string
}

var (
	sendFinalization  = finalization{stopped: StoppedMessage, suffix: StoppedSuffix, errMsg: ErrorMessage}
	regenFinalization = finalization{stopped: RegenStoppedMessage, errMsg: RegenErrorMessage}
)

// Coordinator drives generations against the session store. It owns the
// in-flight bookkeeping: a second concurrent request for the same
// session is rejected rather than racing on token write-backs.
type Coordinator struct {
	store     *store.Store
	transport psalm.Transport
	logger    *slog.Logger
}

// New creates a Coordinator. A nil logger falls back to slog.Default().
func New(st *store.Store, transport psalm.Transport, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: st, transport: transport, logger: logger}
}

// SendOption configures a single Send or Regenerate invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onDelta func(string)
}

// WithDeltaHandler sets a callback invoked for each streamed fragment.
// If not set, fragments are applied to the store silently.
func WithDeltaHandler(h func(string)) SendOption {
	return func(c *sendConfig) { c.onDelta = h }
}

// Send appends the user message and a streaming assistant placeholder,
// then drains the transport stream into the placeholder. Transport
// failures and aborts finalize the placeholder rather than propagate;
// only rejected operations (unknown session, generation already in
// flight) return an error.
func (c *Coordinator) Send(ctx context.Context, sessionID, content string, attachments []psalm.UploadRef, opts ...SendOption) error {
	sess, ok := c.store.Get(sessionID)
	if !ok {
		return psalm.ErrSessionNotFound
	}
	if err := c.store.BeginGeneration(sessionID); err != nil {
		return err
	}
	defer c.store.EndGeneration(sessionID)

	history := sess.Messages

	userMsg := psalm.NewUserMessage(content)
	if err := c.store.AppendMessage(sessionID, userMsg); err != nil {
		return err
	}

	if len(attachments) > 0 {
		merged := append(append([]psalm.UploadRef{}, sess.Attachments...), attachments...)
		if err := c.store.UpdateSession(sessionID, store.Update{Attachments: merged}); err != nil {
			return err
		}
	}

	placeholder := psalm.Message{
		ID:          psalm.NewID(),
		Role:        psalm.RoleAssistant,
		Timestamp:   userMsg.Timestamp,
		IsStreaming: true,
	}
	if err := c.store.AppendMessage(sessionID, placeholder); err != nil {
		return err
	}

	req := psalm.ChatRequest{
		Messages:     append(history, userMsg),
		Stream:       true,
		Jurisdiction: sess.Jurisdiction,
		Attachments:  attachments,
	}
	c.run(ctx, sessionID, placeholder.ID, req, opts, sendFinalization)
	return nil
}

// Regenerate re-streams the assistant message in place, using the
// history up to (excluding) the target message.
func (c *Coordinator) Regenerate(ctx context.Context, sessionID, messageID string, opts ...SendOption) error {
	sess, ok := c.store.Get(sessionID)
	if !ok {
		return psalm.ErrSessionNotFound
	}
	idx := -1
	for i, m := range sess.Messages {
		if m.ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return psalm.ErrMessageNotFound
	}
	if err := c.store.BeginGeneration(sessionID); err != nil {
		return err
	}
	defer c.store.EndGeneration(sessionID)

	if err := c.store.RegenerateMessage(sessionID, messageID); err != nil {
		return err
	}

	req := psalm.ChatRequest{
		Messages:     sess.Messages[:idx],
		Stream:       true,
		Jurisdiction: sess.Jurisdiction,
	}
	c.run(ctx, sessionID, messageID, req, opts, regenFinalization)
	return nil
}

// Stop requests cancellation of the current stream.
func (c *Coordinator) Stop() {
	c.transport.Abort()
}

// run drains a stream into the target message and finalizes it. Every
// exit path clears the streaming flag.
func (c *Coordinator) run(ctx context.Context, sessionID, messageID string, req psalm.ChatRequest, opts []SendOption, fin finalization) {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	stream, err := c.transport.SendChat(ctx, req)
	if err != nil {
		if errors.Is(err, psalm.ErrAborted) {
			c.finalize(sessionID, messageID, fin.stopped)
			return
		}
		c.logger.Error("send chat", "session", sessionID, "error", err)
		c.finalize(sessionID, messageID, fin.errMsg)
		return
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		frag, err := stream.Next()
		if err == io.EOF {
			c.finalize(sessionID, messageID, sb.String())
			return
		}
		if errors.Is(err, psalm.ErrAborted) {
			if fin.suffix == "" || sb.Len() == 0 {
				c.finalize(sessionID, messageID, fin.stopped)
				return
			}
			c.finalize(sessionID, messageID, sb.String()+fin.suffix)
			return
		}
		if err != nil {
			c.logger.Error("read stream", "session", sessionID, "error", err)
			c.finalize(sessionID, messageID, fin.errMsg)
			return
		}
		sb.WriteString(frag)
		if cfg.onDelta != nil {
			cfg.onDelta(frag)
		}
		c.applyContent(sessionID, messageID, sb.String(), true)
	}
}

// applyContent splices content into the target message by recomputing
// the full messages slice and replacing it wholesale.
func (c *Coordinator) applyContent(sessionID, messageID, content string, streaming bool) {
	sess, ok := c.store.Get(sessionID)
	if !ok {
		return
	}
	msgs := make([]psalm.Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content = content
			msgs[i].IsStreaming = streaming
		}
	}
	if err := c.store.UpdateSession(sessionID, store.Update{Messages: msgs}); err != nil {
		c.logger.Error("update session", "session", sessionID, "error", err)
	}
}

func (c *Coordinator) finalize(sessionID, messageID, content string) {
	c.applyContent(sessionID, messageID, content, false)
}
