package offline_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/offline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient() *offline.Client {
	c := offline.New()
	c.TickInterval = time.Microsecond
	c.HealthDelay = time.Millisecond
	return c
}

func TestSendChat_StreamsCannedResponse(t *testing.T) {
	t.Parallel()

	c := fastClient()
	s, err := c.SendChat(context.Background(), psalm.ChatRequest{Stream: true})
	require.NoError(t, err)
	defer s.Close()

	var sb strings.Builder
	for {
		frag, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sb.WriteString(frag)
	}

	got := sb.String()
	assert.Contains(t, got, "This service is not configured yet.")
	assert.Contains(t, got, "Admin Settings")
}

func TestSendChat_NonStreaming(t *testing.T) {
	t.Parallel()

	c := fastClient()
	s, err := c.SendChat(context.Background(), psalm.ChatRequest{Stream: false})
	require.NoError(t, err)
	defer s.Close()

	frag, err := s.Next()
	require.NoError(t, err)
	assert.Contains(t, frag, "This service is not configured yet.")

	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestAbort_TerminatesStream(t *testing.T) {
	t.Parallel()

	c := fastClient()
	s, err := c.SendChat(context.Background(), psalm.ChatRequest{Stream: true})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next()
	require.NoError(t, err)

	c.Abort()

	_, err = s.Next()
	assert.ErrorIs(t, err, psalm.ErrAborted)
	_, err = s.Next()
	assert.ErrorIs(t, err, psalm.ErrAborted)
}

func TestHealth_FullCapabilities(t *testing.T) {
	t.Parallel()

	c := fastClient()
	h, err := c.Health(context.Background())
	require.NoError(t, err)

	assert.True(t, h.OK)
	assert.Equal(t, []psalm.Capability{
		psalm.CapabilityChat, psalm.CapabilityFiles, psalm.CapabilityVoice,
	}, h.Capabilities)
}

func TestHealth_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := offline.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, err := c.Health(ctx)
	require.Error(t, err)
	assert.False(t, h.OK)
}

func TestUploadFile_Validates(t *testing.T) {
	t.Parallel()

	c := fastClient()

	ref, err := c.UploadFile(context.Background(), "brief.pdf", "application/pdf", 100, strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, "brief.pdf", ref.Name)

	_, err = c.UploadFile(context.Background(), "huge.pdf", "application/pdf", psalm.MaxUploadSize+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, psalm.ErrValidation)
}

func TestTranscribeAudio_CannedText(t *testing.T) {
	t.Parallel()

	c := fastClient()
	text, err := c.TranscribeAudio(context.Background(), "memo.wav", strings.NewReader("audio"))
	require.NoError(t, err)
	assert.Contains(t, text, "speech-to-text")
}
