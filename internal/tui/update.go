package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ProfilesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.profiles = msg.Profiles
		m.selected = 0
		m.recalculate()
		return m, nil
	}

	var cmd tea.Cmd
	m.gross, cmd = m.gross.Update(msg)
	return m, cmd
}

// handleKeyPress runs global bindings first and sends the rest to the gross
// pay input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.NextProfile):
		if n := len(m.profiles); n > 0 {
			m.selected = (m.selected + 1) % n
			m.recalculate()
		}
		return m, nil

	case key.Matches(msg, m.keymap.PrevProfile):
		if n := len(m.profiles); n > 0 {
			m.selected = (m.selected - 1 + n) % n
			m.recalculate()
		}
		return m, nil

	case key.Matches(msg, m.keymap.NextPeriod):
		m.period = (m.period + 1) % len(PayPeriods)
		m.recalculate()
		return m, nil

	case key.Matches(msg, m.keymap.PrevPeriod):
		m.period = (m.period - 1 + len(PayPeriods)) % len(PayPeriods)
		m.recalculate()
		return m, nil
	}

	var cmd tea.Cmd
	m.gross, cmd = m.gross.Update(msg)
	m.recalculate()
	return m, cmd
}
