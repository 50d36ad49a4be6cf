package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/Veraticus/marketpulse/internal/views"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, sess *session.Controller, backend views.Backend, opts ...Option) error {
	if sess == nil || backend == nil {
		return fmt.Errorf("session and backend are required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Restore the terminal even if the program dies mid-frame.
	defer func() {
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}()

	m := New(ctx, sess, backend, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.cancelView()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
