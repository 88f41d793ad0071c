package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/tui/state"
	"github.com/julianstephens/routinely/internal/utils"
)

// updateForm forwards msg to the active form.
func updateForm(m *state.Model, msg tea.Msg) tea.Cmd {
	form, cmd := m.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form = f
	}
	return cmd
}

// isEsc reports whether msg is the escape key.
func isEsc(msg tea.Msg) bool {
	k, ok := msg.(tea.KeyMsg)
	return ok && k.Type == tea.KeyEsc
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	return nil
}

func validateDays(s string) error {
	_, err := schedule.ParseDays(s)
	return err
}

func validateTarget(s string) error {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("target must be a number")
	}
	if i < 1 {
		return fmt.Errorf("target must be at least 1")
	}
	return nil
}

func validateRemind(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || utils.ValidateTimeFormat(s) {
		return nil
	}
	return fmt.Errorf("invalid time format, use HH:MM")
}

// NewHabitForm creates a new form for adding or editing habits
func NewHabitForm(fm *state.HabitFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Habit name").
				Value(&fm.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Days").
				Description("daily, weekdays, weekend or a list such as mon,wed,fri").
				Value(&fm.Days).
				Validate(validateDays),
			huh.NewInput().
				Title("Daily target").
				Description("1 for a done/not-done habit").
				Value(&fm.Target).
				Validate(validateTarget),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Leave empty for no reminder").
				Value(&fm.Remind).
				Validate(validateRemind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Category").
				Value(&fm.Category),
			huh.NewInput().
				Title("Icon").
				Value(&fm.Icon),
			huh.NewInput().
				Title("Color").
				Description("ANSI number or #RRGGBB").
				Value(&fm.Color),
		),
	).WithTheme(huh.ThemeDracula())
}

// DraftFromForm converts the form into a habit draft.
func DraftFromForm(fm *state.HabitFormModel) (models.HabitDraft, error) {
	days, err := schedule.ParseDays(fm.Days)
	if err != nil {
		return models.HabitDraft{}, &models.InvalidHabitError{Field: "schedule", Reason: err.Error()}
	}
	target, err := strconv.Atoi(strings.TrimSpace(fm.Target))
	if err != nil {
		return models.HabitDraft{}, &models.InvalidHabitError{Field: "target_value", Reason: "must be a number"}
	}
	return models.HabitDraft{
		Name:             fm.Name,
		Icon:             strings.TrimSpace(fm.Icon),
		Color:            strings.TrimSpace(fm.Color),
		Category:         fm.Category,
		Schedule:         schedule.Encode(days),
		TargetValue:      target,
		NotificationTime: strings.TrimSpace(fm.Remind),
	}, nil
}

// NewProgressForm creates a new form for setting a counted habit's value
func NewProgressForm(fm *state.ProgressFormModel, h models.Habit) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Progress for %s", h.Name)).
				Description(fmt.Sprintf("0 to %d", h.TargetValue)).
				Value(&fm.Value).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("value must be a number")
					}
					if i < 0 {
						return fmt.Errorf("value must not be negative")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewSettingsForm creates a new form for editing settings
func NewSettingsForm(fm *state.SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Timezone (IANA name or 'Local')").
				Description("Takes effect the next time routinely starts").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					if !utils.ValidateTimezone(s) {
						return fmt.Errorf("invalid timezone name")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Enable Notifications").
				Value(&fm.NotificationsEnabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default filter").
				Options(
					huh.NewOption("Due today", projection.Today.String()),
					huh.NewOption("All", projection.All.String()),
					huh.NewOption("Not done today", projection.Uncompleted.String()),
				).
				Value(&fm.Filter),
			huh.NewSelect[string]().
				Title("Default sort").
				Options(
					huh.NewOption("Newest first", projection.ByCreationDate.String()),
					huh.NewOption("Name", projection.ByName.String()),
					huh.NewOption("Streak", projection.ByStreak.String()),
				).
				Value(&fm.Sort),
			huh.NewConfirm().
				Title("Names A to Z").
				Value(&fm.NameAscending),
			huh.NewInput().
				Title("Category").
				Description("Leave empty to show every category").
				Value(&fm.Category),
		),
	).WithTheme(huh.ThemeDracula())
}
