package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	rw "github.com/mattn/go-runewidth"
	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/store"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the Psalm chat shell.
type Model struct {
	// Input is the composer component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	send   SendFunc
	stop   StopFunc
	store  *store.Store
	theme  psalm.Theme
	styles Styles

	blocks []MessageBlock
	// active is the assistant block currently receiving stream deltas.
	active *AssistantBlock

	running bool
	cancel  context.CancelFunc
	deltaCh chan string
	doneCh  chan error
	err     error
	ready   bool
}

// New creates a TUI Model bound to a session store, send function and theme.
func New(send SendFunc, stop StopFunc, st *store.Store, theme psalm.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a legal question..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:  ti,
		send:   send,
		stop:   stop,
		store:  st,
		theme:  theme,
		styles: NewStyles(theme),
	}
	m = m.renderSession()
	return m.seedPrefill()
}

// Running returns whether a generation is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// SetRunning is a test helper that puts the model in a running state.
func SetRunning(m Model) (Model, tea.Cmd) {
	m.running = true
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamDeltaMsg:
		if m.active == nil {
			b := NewAssistantBlock(m.theme, m.styles)
			m.blocks = append(m.blocks, b)
			m.active = b
		}
		m.active.Append(msg.Delta)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.deltaCh != nil {
			return m, listenForDelta(m.deltaCh, m.doneCh)
		}
		return m, nil

	case SendDoneMsg:
		m.running = false
		m.cancel = nil
		m.deltaCh = nil
		m.doneCh = nil
		m.active = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		// Rebuild from the store so finalized content (stop notices,
		// error text, citations) replaces the streamed view.
		m.blocks = nil
		m = m.renderSession()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		cmd := m.Input.Focus()
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusHeight - borderHeight

	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.stopGeneration()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m.stopGeneration()
		}
		return m, nil

	case tea.KeyCtrlN:
		if m.running {
			return m, nil
		}
		m.store.CreateSession(nil)
		m.err = nil
		m.blocks = nil
		m.Input.SetValue("")
		m = m.renderSession()
		m = m.seedPrefill()
		m.Viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// When idle, pass keys to both input (for typing) and viewport (for
	// scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) stopGeneration() {
	if m.stop != nil {
		m.stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	sessionID := m.store.CurrentID()
	if sessionID == "" {
		sessionID = m.store.CreateSession(nil)
	}

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.deltaCh = make(chan string, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m.active = nil

	m.Input.Blur()

	return m, tea.Batch(
		startSend(m.send, ctx, sessionID, text, m.deltaCh, m.doneCh),
		listenForDelta(m.deltaCh, m.doneCh),
	)
}

// seedPrefill copies the session's prefill template into an empty
// composer so a preset-started chat opens with its worksheet filled in.
// A session with user messages already carries a conversation, so the
// template is no longer relevant.
func (m Model) seedPrefill() Model {
	sess, ok := m.store.Current()
	if !ok || sess.PrefillContent == "" || !sess.Empty() {
		return m
	}
	if strings.TrimSpace(m.Input.Value()) != "" {
		return m
	}
	m.Input.SetValue(sess.PrefillContent)
	m.Input.CursorEnd()
	return m
}

// renderSession creates blocks from the current session's messages.
func (m Model) renderSession() Model {
	sess, ok := m.store.Current()
	if !ok {
		return m
	}
	for _, msg := range sess.Messages {
		switch msg.Role {
		case psalm.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case psalm.RoleAssistant:
			b := NewAssistantBlock(m.theme, m.styles)
			b.Append(msg.Content)
			b.SetCitations(msg.Citations)
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render("Error: " + m.err.Error())
	}
	if m.running {
		return m.styles.Muted.Render("Generating... (Esc to stop)")
	}
	title := store.DefaultTitle
	if sess, ok := m.store.Current(); ok {
		title = sess.Title
	}
	hints := "  Enter to send, Ctrl+N new chat, Ctrl+C to quit"
	if w := m.Viewport.Width - rw.StringWidth(hints); w > 1 && rw.StringWidth(title) > w {
		title = rw.Truncate(title, w, "…")
	}
	return m.styles.Accent.Render(title) + m.styles.Muted.Render(hints)
}

// startSend runs the send function in a goroutine and signals completion.
func startSend(send SendFunc, ctx context.Context, sessionID, content string, deltaCh chan<- string, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := send(ctx, sessionID, content, func(delta string) {
			select {
			case deltaCh <- delta:
			case <-ctx.Done():
			}
		})
		close(deltaCh)
		doneCh <- err
		return nil
	}
}

// listenForDelta waits for the next fragment from the channel. When the
// channel closes, it reads the error from doneCh and returns SendDoneMsg.
func listenForDelta(ch <-chan string, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		delta, ok := <-ch
		if !ok {
			err := <-doneCh
			return SendDoneMsg{Err: err}
		}
		return StreamDeltaMsg{Delta: delta}
	}
}
