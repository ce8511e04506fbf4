package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Run launches the interactive inline TUI.
func Run(version, profile string, log zerolog.Logger) error {
	m := initialModel(version, profile, log)

	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
