package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/streak"
	"github.com/julianstephens/routinely/internal/tui/components/habits"
	"github.com/julianstephens/routinely/internal/tui/state"
)

// HandleHabitFormState handles the add and edit habit states
func HandleHabitFormState(m *state.Model, msg tea.Msg) tea.Cmd {
	if isEsc(msg) {
		m.FormError = ""
		m.State = constants.StateHabits
		return nil
	}

	cmd := updateForm(m, msg)

	switch m.Form.State {
	case huh.StateCompleted:
		draft, err := DraftFromForm(m.HabitForm)
		if err == nil {
			if m.EditingHabitID != 0 {
				_, err = m.Store.Update(m.Context(), m.EditingHabitID, draft)
			} else {
				_, err = m.Store.Create(m.Context(), draft)
			}
		}
		if err != nil {
			// Stay in the form so the user can correct it or cancel with ESC
			m.FormError = err.Error()
			m.Form.State = huh.StateNormal
			return cmd
		}
		m.FormError = ""
		m.EditingHabitID = 0
		m.State = constants.StateHabits
	case huh.StateAborted:
		m.FormError = ""
		m.EditingHabitID = 0
		m.State = constants.StateHabits
	}
	return cmd
}

// HandleSetProgressState handles the set-value state for counted habits
func HandleSetProgressState(m *state.Model, msg tea.Msg) tea.Cmd {
	if isEsc(msg) {
		m.FormError = ""
		m.State = constants.StateHabits
		return nil
	}

	cmd := updateForm(m, msg)

	switch m.Form.State {
	case huh.StateCompleted:
		value, err := strconv.Atoi(strings.TrimSpace(m.ProgressForm.Value))
		if err == nil {
			_, err = m.Store.Apply(m.Context(), m.EditingHabitID, streak.Set{Value: value})
		}
		if err != nil {
			m.FormError = err.Error()
			m.Form.State = huh.StateNormal
			return cmd
		}
		m.FormError = ""
		m.EditingHabitID = 0
		m.State = constants.StateHabits
	case huh.StateAborted:
		m.FormError = ""
		m.EditingHabitID = 0
		m.State = constants.StateHabits
	}
	return cmd
}

// HandleHabitMessages handles messages from the habits component
func HandleHabitMessages(m *state.Model, msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.HabitForm = &state.HabitFormModel{
			Days:     constants.DefaultSchedule,
			Target:   strconv.Itoa(constants.DefaultTarget),
			Category: m.HabitsModel.Options().Category,
		}
		m.EditingHabitID = 0
		m.FormError = ""
		m.Form = NewHabitForm(m.HabitForm, "New habit")
		m.State = constants.StateAddHabit
		return true, m.Form.Init()

	case habits.EditHabitMsg:
		h, ok := m.Store.Habit(msg.ID)
		if !ok {
			return true, nil
		}
		m.HabitForm = state.HabitFormFrom(h)
		m.EditingHabitID = h.ID
		m.FormError = ""
		m.Form = NewHabitForm(m.HabitForm, "Edit habit")
		m.State = constants.StateEditHabit
		return true, m.Form.Init()

	case habits.DeleteHabitMsg:
		h, ok := m.Store.Habit(msg.ID)
		if !ok {
			return true, nil
		}
		m.ConfirmMessage = fmt.Sprintf("Delete %q and its history?", h.Name)
		m.PendingAction = func(m *state.Model) tea.Cmd {
			m.Fail(m.Store.Delete(m.Context(), h.ID))
			return nil
		}
		m.PreviousState = constants.StateHabits
		m.State = constants.StateConfirmDelete
		return true, nil

	case habits.ToggleHabitMsg:
		_, err := m.Store.Apply(m.Context(), msg.ID, streak.Toggle{Checked: msg.Checked})
		m.Fail(err)
		return true, nil

	case habits.IncrementHabitMsg:
		_, err := m.Store.Apply(m.Context(), msg.ID, streak.Increment{})
		m.Fail(err)
		return true, nil

	case habits.DecrementHabitMsg:
		_, err := m.Store.Apply(m.Context(), msg.ID, streak.Decrement{})
		m.Fail(err)
		return true, nil

	case habits.SetProgressMsg:
		h, ok := m.Store.Habit(msg.ID)
		if !ok {
			return true, nil
		}
		m.ProgressForm = &state.ProgressFormModel{Value: strconv.Itoa(h.CurrentValue)}
		m.EditingHabitID = h.ID
		m.FormError = ""
		m.Form = NewProgressForm(m.ProgressForm, h)
		m.State = constants.StateSetProgress
		return true, m.Form.Init()

	case habits.SortMsg:
		m.SaveViewOptions(m.Projector.SelectSort(msg.Mode))
		return true, nil

	case habits.CycleFilterMsg:
		m.SaveViewOptions(m.Projector.SetFilter(NextFilter(m.Projector.Options().Filter)))
		return true, nil

	case habits.CycleCategoryMsg:
		next := NextCategory(m.HabitsModel.Categories(), m.Projector.Options().Category)
		m.SaveViewOptions(m.Projector.SetCategory(next))
		return true, nil
	}
	return false, nil
}

// NextFilter cycles today → all → uncompleted.
func NextFilter(f projection.FilterMode) projection.FilterMode {
	switch f {
	case projection.Today:
		return projection.All
	case projection.All:
		return projection.Uncompleted
	default:
		return projection.Today
	}
}

// NextCategory cycles through "" (any) and each category in order.
func NextCategory(categories []string, current string) string {
	if current == "" {
		if len(categories) == 0 {
			return ""
		}
		return categories[0]
	}
	for i, c := range categories {
		if strings.EqualFold(c, current) && i+1 < len(categories) {
			return categories[i+1]
		}
	}
	return ""
}
