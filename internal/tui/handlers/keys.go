package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/tui/state"
)

// IsTab reports whether s is one of the top-level screens.
func IsTab(s constants.SessionState) bool {
	return s == constants.StateHabits || s == constants.StateStats || s == constants.StateSettings
}

// HandleGlobalKeys handles global key presses
func HandleGlobalKeys(m *state.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Quitting = true
		return true, tea.Quit
	}
	if !IsTab(m.State) {
		return false, nil
	}

	switch msg.String() {
	case "q":
		m.Quitting = true
		return true, tea.Quit
	case "?":
		m.Help.ShowAll = !m.Help.ShowAll
		return true, nil
	case "tab":
		switch m.State {
		case constants.StateHabits:
			m.State = constants.StateStats
		case constants.StateStats:
			m.State = constants.StateSettings
		case constants.StateSettings:
			m.State = constants.StateHabits
		}
		return true, nil
	case "shift+tab":
		switch m.State {
		case constants.StateHabits:
			m.State = constants.StateSettings
		case constants.StateStats:
			m.State = constants.StateHabits
		case constants.StateSettings:
			m.State = constants.StateStats
		}
		return true, nil
	}
	return false, nil
}
