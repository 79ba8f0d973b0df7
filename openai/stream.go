package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/psalmlegal/psalm"
)

// stream implements [psalm.Stream] over an SSE response body. A data
// frame is a line starting with "data: "; the literal [DONE] sentinel or
// a non-null finish_reason ends the stream; frames with invalid JSON are
// dropped silently.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	cancel  context.CancelFunc
	err     error // terminal, sticky
}

// Interface compliance checks.
var (
	_ psalm.Stream = (*stream)(nil)
	_ psalm.Stream = (*singleStream)(nil)
)

func newStream(ctx context.Context, cancel context.CancelFunc, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Next returns the next text delta in arrival order. The cancellation
// signal is checked between reads, so an abort is observed within one
// read cycle.
func (s *stream) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}

	for {
		if s.ctx.Err() != nil {
			return "", s.terminate(psalm.ErrAborted)
		}
		if !s.scanner.Scan() {
			break
		}

		line := s.scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if data == doneSentinel {
			return "", s.terminate(io.EOF)
		}

		var chunk sseChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed frame: drop, never fail the stream.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			return choice.Delta.Content, nil
		}
		if choice.FinishReason != nil {
			return "", s.terminate(io.EOF)
		}
	}

	if err := s.scanner.Err(); err != nil {
		if s.ctx.Err() != nil {
			return "", s.terminate(psalm.ErrAborted)
		}
		return "", s.terminate(fmt.Errorf("openai: read stream: %w", err))
	}
	return "", s.terminate(io.EOF)
}

// terminate records the terminal error, closes the body and releases
// the per-call cancellation context.
func (s *stream) terminate(err error) error {
	s.err = err
	s.body.Close()
	if s.cancel != nil {
		s.cancel()
	}
	return err
}

// Close closes the underlying response body and releases the per-call
// context. Subsequent reads report a closed stream.
func (s *stream) Close() error {
	if s.err == nil {
		s.err = psalm.ErrStreamClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	return s.body.Close()
}

// singleStream yields one fragment and completes; the degenerate
// sequence used for non-streaming responses.
type singleStream struct {
	content   string
	delivered bool
}

func (s *singleStream) Next() (string, error) {
	if s.delivered {
		return "", io.EOF
	}
	s.delivered = true
	return s.content, nil
}

func (s *singleStream) Close() error {
	s.delivered = true
	return nil
}
