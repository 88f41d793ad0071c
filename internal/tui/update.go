package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/tui/handlers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Feed updates arrive regardless of the screen.
	switch msg := msg.(type) {
	case viewMsg:
		m.HabitsModel.SetView(projection.View(msg), m.Store.Now())
		m.UpdateValidationStatus()
		return m, waitForView(m.views)
	case reportMsg:
		m.StatsModel.SetReport(stats.Report(msg))
		return m, waitForReport(m.reports)
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		// Tabs, banner and help take four lines.
		height := msg.Height - 4

		h, v := docStyle.GetFrameSize()
		m.HabitsModel.SetSize(msg.Width-h, height-v)
		m.StatsModel.SetSize(msg.Width-h, height-v)
		m.SettingsModel.SetSize(msg.Width-h, height-v)
		return m, nil
	}

	switch m.State {
	case constants.StateAddHabit, constants.StateEditHabit:
		return m, handlers.HandleHabitFormState(&m.Model, msg)
	case constants.StateSetProgress:
		return m, handlers.HandleSetProgressState(&m.Model, msg)
	case constants.StateEditSettings:
		return m, handlers.HandleEditSettingsState(&m.Model, msg)
	case constants.StateConfirmDelete, constants.StateConfirmReset:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
			break
		}
		return m, handlers.HandleConfirmState(&m.Model, msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := handlers.HandleGlobalKeys(&m.Model, msg); handled {
			return m, cmd
		}
	}

	if handled, cmd := handlers.HandleHabitMessages(&m.Model, msg); handled {
		return m, cmd
	}
	if handled, cmd := handlers.HandleSettingsMessages(&m.Model, msg); handled {
		return m, cmd
	}
	if handled, cmd := handlers.HandleStatsMessages(&m.Model, msg); handled {
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.State {
	case constants.StateHabits:
		m.HabitsModel, cmd = m.HabitsModel.Update(msg)
	case constants.StateStats:
		m.StatsModel, cmd = m.StatsModel.Update(msg)
	case constants.StateSettings:
		m.SettingsModel, cmd = m.SettingsModel.Update(msg)
	}
	return m, cmd
}
