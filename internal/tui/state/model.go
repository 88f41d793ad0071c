package state

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/stats"
	habitlist "github.com/julianstephens/routinely/internal/tui/components/habits"
	"github.com/julianstephens/routinely/internal/tui/components/settings"
	statsview "github.com/julianstephens/routinely/internal/tui/components/stats"
	"github.com/julianstephens/routinely/internal/validation"
)

// HabitFormModel backs the add and edit habit form.
type HabitFormModel struct {
	Name     string
	Icon     string
	Color    string
	Category string
	Days     string
	Target   string
	Remind   string
}

// HabitFormFrom fills the form with h's current values.
func HabitFormFrom(h models.Habit) *HabitFormModel {
	return &HabitFormModel{
		Name:     h.Name,
		Icon:     h.Icon,
		Color:    h.Color,
		Category: h.Category,
		Days:     h.Schedule,
		Target:   strconv.Itoa(h.TargetValue),
		Remind:   h.NotificationTime,
	}
}

// ProgressFormModel backs the set-value form for counted habits.
type ProgressFormModel struct {
	Value string
}

// SettingsFormModel backs the settings form.
type SettingsFormModel struct {
	Timezone             string
	NotificationsEnabled bool
	Filter               string
	Sort                 string
	NameAscending        bool
	Category             string
}

// SettingsSaver persists settings.
type SettingsSaver interface {
	SaveSettings(ctx context.Context, settings models.Settings) error
}

// Model represents the shared state for the TUI
type Model struct {
	Ctx       context.Context
	Store     *habits.Store
	Projector *projection.Projector
	Watcher   *stats.Watcher
	Saver     SettingsSaver
	Settings  models.Settings

	State         constants.SessionState
	PreviousState constants.SessionState
	Keys          KeyMap
	Help          help.Model

	HabitsModel   habitlist.Model
	StatsModel    statsview.Model
	SettingsModel settings.Model

	Form         *huh.Form
	HabitForm    *HabitFormModel
	ProgressForm *ProgressFormModel
	SettingsForm *SettingsFormModel

	EditingHabitID int64
	ConfirmMessage string
	PendingAction  func(*Model) tea.Cmd

	Quitting            bool
	Width               int
	Height              int
	ValidationWarning   string                // Validation warning message to display
	ValidationConflicts []validation.Conflict // Detailed conflict information
	FormError           string                // Error message to display for form operations
	StatusError         string                // Last failed action outside a form
}

// New creates a new state Model. The habit list and report fill in once
// the projector and watcher publish.
func New(ctx context.Context, store *habits.Store, projector *projection.Projector, watcher *stats.Watcher, saver SettingsSaver, s models.Settings) Model {
	return Model{
		Ctx:           ctx,
		Store:         store,
		Projector:     projector,
		Watcher:       watcher,
		Saver:         saver,
		Settings:      s,
		State:         constants.StateHabits,
		Keys:          DefaultKeyMap(),
		Help:          help.New(),
		HabitsModel:   habitlist.New(0, 0),
		StatsModel:    statsview.New(0, 0),
		SettingsModel: settings.New(s, 0, 0),
	}
}

// Context returns Ctx or context.Background.
func (m *Model) Context() context.Context {
	if m.Ctx != nil {
		return m.Ctx
	}
	return context.Background()
}

// Fail records err from an action taken outside a form. A nil err clears
// the last error.
func (m *Model) Fail(err error) {
	if err == nil {
		m.StatusError = ""
		return
	}
	m.StatusError = err.Error()
}

// SaveSettings persists s and refreshes the settings screen.
func (m *Model) SaveSettings(s models.Settings) error {
	if err := m.Saver.SaveSettings(m.Context(), s); err != nil {
		return err
	}
	m.Settings = s
	m.SettingsModel.SetSettings(s)
	return nil
}

// SaveViewOptions remembers the habit list's filter and sort choices.
func (m *Model) SaveViewOptions(opts projection.Options) {
	m.Fail(m.SaveSettings(opts.ApplyTo(m.Settings)))
}
