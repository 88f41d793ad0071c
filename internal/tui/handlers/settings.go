package handlers

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/tui/components/settings"
	"github.com/julianstephens/routinely/internal/tui/state"
)

// HandleEditSettingsState handles the edit settings state
func HandleEditSettingsState(m *state.Model, msg tea.Msg) tea.Cmd {
	if isEsc(msg) {
		m.FormError = ""
		m.State = constants.StateSettings
		return nil
	}

	cmd := updateForm(m, msg)

	switch m.Form.State {
	case huh.StateCompleted:
		s := m.Settings
		s.Timezone = strings.TrimSpace(m.SettingsForm.Timezone)
		s.NotificationsEnabled = m.SettingsForm.NotificationsEnabled
		s.DefaultFilter = m.SettingsForm.Filter
		s.DefaultSort = m.SettingsForm.Sort
		s.NameAscending = m.SettingsForm.NameAscending
		s.DefaultCategory = strings.TrimSpace(m.SettingsForm.Category)

		if err := m.SaveSettings(s); err != nil {
			// Stay in the form to allow retry
			m.FormError = "Failed to update settings: " + err.Error()
			m.Form.State = huh.StateNormal
			return cmd
		}
		m.Projector.SetOptions(projection.FromSettings(s))
		m.FormError = ""
		m.State = constants.StateSettings
	case huh.StateAborted:
		m.FormError = ""
		m.State = constants.StateSettings
	}
	return cmd
}

// HandleSettingsMessages handles messages from the settings component
func HandleSettingsMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg.(type) {
	case settings.EditSettingsMsg:
		m.SettingsForm = &state.SettingsFormModel{
			Timezone:             m.Settings.Timezone,
			NotificationsEnabled: m.Settings.NotificationsEnabled,
			Filter:               m.Settings.DefaultFilter,
			Sort:                 m.Settings.DefaultSort,
			NameAscending:        m.Settings.NameAscending,
			Category:             m.Settings.DefaultCategory,
		}
		m.FormError = ""
		m.Form = NewSettingsForm(m.SettingsForm)
		m.State = constants.StateEditSettings
		return true, m.Form.Init()

	case settings.ToggleNotificationsMsg:
		s := m.Settings
		s.NotificationsEnabled = !s.NotificationsEnabled
		m.Fail(m.SaveSettings(s))
		return true, nil

	case settings.ResetDataMsg:
		count := len(m.Store.Habits())
		m.ConfirmMessage = fmt.Sprintf("Delete all %d habit(s) and their history?", count)
		m.PendingAction = func(m *state.Model) tea.Cmd {
			m.Fail(m.Store.ClearAll(m.Context()))
			return nil
		}
		m.PreviousState = constants.StateSettings
		m.State = constants.StateConfirmReset
		return true, nil
	}
	return false, nil
}
