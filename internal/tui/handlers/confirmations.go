package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/tui/state"
)

// HandleConfirmState handles the delete and reset confirmations. y runs the
// pending action; n or esc drops it.
func HandleConfirmState(m *state.Model, msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	var cmd tea.Cmd
	switch k.String() {
	case "y", "Y":
		if m.PendingAction != nil {
			cmd = m.PendingAction(m)
		}
	case "n", "N", "esc":
	default:
		return nil
	}
	m.PendingAction = nil
	m.ConfirmMessage = ""
	m.State = m.PreviousState
	return cmd
}
