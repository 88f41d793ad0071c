package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/routinely/internal/constants"
)

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var content string

	switch m.State {
	case constants.StateHabits:
		content = docStyle.Render(m.HabitsModel.View())
	case constants.StateStats:
		content = docStyle.Render(m.StatsModel.View())
	case constants.StateSettings:
		content = docStyle.Render(m.SettingsModel.View())
	case constants.StateAddHabit, constants.StateEditHabit, constants.StateSetProgress, constants.StateEditSettings:
		content = m.viewForm()
	case constants.StateConfirmDelete, constants.StateConfirmReset:
		content = m.viewConfirm()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewBanner(),
		content,
		m.Help.View(m),
	)
}

func (m Model) viewTabs() string {
	titles := []struct {
		title string
		state constants.SessionState
	}{
		{"Habits", constants.StateHabits},
		{"Statistics", constants.StateStats},
		{"Settings", constants.StateSettings},
	}
	var tabs []string
	for _, t := range titles {
		if m.State == t.state {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	switch {
	case m.StatusError != "":
		return dangerStyle.Render("Error: " + m.StatusError)
	case m.ValidationWarning != "" && m.State == constants.StateHabits:
		return warningStyle.Render(m.ValidationWarning + " (run 'routinely validate')")
	}
	return ""
}

func (m Model) viewForm() string {
	if m.Form == nil {
		return ""
	}
	view := m.Form.View()
	if m.FormError != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, dangerStyle.Render(m.FormError))
	}
	return docStyle.Render(view)
}

func (m Model) viewConfirm() string {
	return lipgloss.Place(m.Width, m.Height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(m.ConfirmMessage),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
