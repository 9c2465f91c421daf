// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the calibrator UI
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alon/egloorator/pkg/calibrate"
)

// Run starts the calibrator and blocks until the user quits
func Run(session *calibrate.Session, opts Options) error {
	p := tea.NewProgram(NewModel(session, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("calibrator UI failed: %w", err)
	}
	return nil
}
