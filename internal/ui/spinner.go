package ui

// spinner.go provides a blocking spinner for long-running operations.
// Uses Bubble Tea spinner (white) instead of huh/spinner.

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Blocking Spinner
// =============================================================================

// actionDoneMsg signals the action completed
type actionDoneMsg struct{}

// blockingSpinnerModel draws a spinner until the action completes
type blockingSpinnerModel struct {
	spinner   spinner.Model
	title     string
	interrupt func()
	done      bool
}

// SpinnerOption configures RunWithSpinner
type SpinnerOption func(*blockingSpinnerModel)

// WithInterrupt sets the function called on ctrl+c
// The spinner keeps running until the action returns, so fn should make the
// action return early (usually a context cancel)
func WithInterrupt(fn func()) SpinnerOption {
	return func(m *blockingSpinnerModel) { m.interrupt = fn }
}

// RunWithSpinner executes an action while displaying a spinner
// The action always runs to completion before RunWithSpinner returns, even if
// the spinner program itself fails
//
// Example:
//
//	var records []models.SnapshotRecord
//	var fetchErr error
//	err := RunWithSpinner("Fetching snapshot list...", func() {
//	    records, fetchErr = client.FetchSnapshots(ctx, url, 0)
//	})
func RunWithSpinner(title string, action func(), opts ...SpinnerOption) error {
	m := blockingSpinnerModel{
		spinner: NewAppSpinner(),
		title:   title,
	}
	for _, opt := range opts {
		opt(&m)
	}

	p := tea.NewProgram(m)

	done := make(chan struct{})
	go func() {
		defer close(done)
		action()
		p.Send(actionDoneMsg{})
	}()

	_, err := p.Run()
	<-done
	if err != nil {
		return fmt.Errorf("spinner program error: %w", err)
	}
	return nil
}

func (m blockingSpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m blockingSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.interrupt == nil {
				return m, tea.Quit
			}
			m.interrupt()
			m.title = "Cancelling..."
		}
	}

	return m, nil
}

func (m blockingSpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), RenderNormal(m.title))
}
