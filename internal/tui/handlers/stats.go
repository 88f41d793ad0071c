package handlers

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/routinely/internal/tui/components/stats"
	"github.com/julianstephens/routinely/internal/tui/state"
	"github.com/julianstephens/routinely/internal/utils"
)

// HandleStatsMessages handles messages from the statistics component. The
// date never moves past today.
func HandleStatsMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case stats.ShiftDayMsg:
		now := m.Store.Now()
		day := utils.AddDays(m.Watcher.Selected(), msg.Days)
		if utils.DaysBetween(day, now, now.Location()) < 0 {
			day = now
		}
		m.Watcher.Select(day)
		return true, nil

	case stats.TodayMsg:
		m.Watcher.Select(m.Store.Now())
		return true, nil
	}
	return false, nil
}
