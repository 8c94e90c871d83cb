package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"abigen/internal/driver"
)

// RunProgress drives the progress view until events is closed.
func RunProgress(out io.Writer, title string, files []string, events <-chan driver.PhaseEvent) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}
