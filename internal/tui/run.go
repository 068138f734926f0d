package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/finchat/internal/app"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the chat screen until the user quits, logs out, or the
// session expires.
func Run(ctx context.Context, root *app.Root, opts ...Option) (Outcome, error) {
	if root == nil {
		return Outcome{}, fmt.Errorf("root is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m, err := NewModel(ctx, root, opts...)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to create chat screen: %w", err)
	}

	// Restore the terminal even when the program dies mid-frame.
	cleanupTerminal := func() {
		_, _ = os.Stdout.Write([]byte("\033[?25h")) // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))    // Reset colors
	}
	defer cleanupTerminal()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if m.config.MouseSupport {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := final.(Model); ok {
		return fm.Outcome(), nil
	}
	return Outcome{}, nil
}
