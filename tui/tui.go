// Package tui provides a Bubble Tea terminal shell for Psalm chats.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// SendFunc submits a user message on a session and streams the reply. The
// onDelta callback is called for each streamed text fragment. The function
// blocks until generation completes or the context is cancelled.
type SendFunc func(ctx context.Context, sessionID, content string, onDelta func(string)) error

// StopFunc aborts the in-flight generation, if any.
type StopFunc func()

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamDeltaMsg carries one streamed text fragment to the model.
type StreamDeltaMsg struct {
	Delta string
}

// SendDoneMsg signals that generation has completed.
type SendDoneMsg struct {
	Err error
}
