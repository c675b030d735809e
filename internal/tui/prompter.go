package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/denjay/npm-scripts-runner/internal/picker"
)

// Prompter shows each choice list as a bubbletea program.
type Prompter struct {
	In        io.Reader
	Out       io.Writer
	AltScreen bool
}

func (p Prompter) Pick(ctx context.Context, placeholder string, items []picker.Item) (int, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	if p.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	res, err := tea.NewProgram(NewModel(placeholder, items), opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return -1, fmt.Errorf("prompt: %w", err)
	}

	m, ok := res.(Model)
	if !ok {
		return -1, picker.ErrCancelled
	}
	i, ok := m.Choice()
	if !ok {
		return -1, picker.ErrCancelled
	}
	return i, nil
}
