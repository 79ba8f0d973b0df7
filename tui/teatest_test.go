package tui_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full send cycle with streamed deltas", func(t *testing.T) {
		t.Parallel()

		st := newTestStore()
		send := func(_ context.Context, sessionID, content string, onDelta func(string)) error {
			require.NoError(t, st.AppendMessage(sessionID, psalm.Message{
				ID: "u1", Role: psalm.RoleUser, Content: content,
			}))
			onDelta("The statute ")
			onDelta("of limitations applies.")
			return st.AppendMessage(sessionID, psalm.Message{
				ID: "a1", Role: psalm.RoleAssistant,
				Content: "The statute of limitations applies.",
			})
		}

		m := tui.New(send, nil, st, psalm.DefaultTheme())
		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("what is the deadline?")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("statute of limitations applies")) &&
				bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(tui.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())

		sess, ok := st.Current()
		require.True(t, ok)
		assert.Len(t, sess.Messages, 2)
		assert.Equal(t, "what is the deadline?", sess.Title)
	})

	t.Run("existing session messages render on init", func(t *testing.T) {
		t.Parallel()

		st := newTestStore()
		id := st.CreateSession(nil)
		require.NoError(t, st.AppendMessage(id, psalm.Message{
			ID: "u1", Role: psalm.RoleUser, Content: "is this clause enforceable",
		}))
		require.NoError(t, st.AppendMessage(id, psalm.Message{
			ID: "a1", Role: psalm.RoleAssistant, Content: "It likely is, with caveats.",
		}))

		m := tui.New(nopSend, nil, st, psalm.DefaultTheme())
		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("is this clause enforceable")) &&
				bytes.Contains(out, []byte("It likely is, with caveats."))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})

	t.Run("esc aborts a stuck generation", func(t *testing.T) {
		t.Parallel()

		st := newTestStore()
		send := func(ctx context.Context, _, _ string, _ func(string)) error {
			<-ctx.Done()
			return ctx.Err()
		}

		m := tui.New(send, nil, st, psalm.DefaultTheme())
		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hang forever")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Generating"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyEsc})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(tui.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
	})
}
