package state

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/validation"
)

// UpdateValidationStatus runs the integrity checks over the current
// snapshot and updates the warning message
func (m *Model) UpdateValidationStatus() {
	if m.Store == nil {
		m.ValidationWarning = "⚠ Validation unavailable"
		m.ValidationConflicts = nil
		return
	}

	validator := validation.New().WithClock(m.Store.Now)
	result := validator.ValidateHabits(m.Store.Habits(), m.Store.Completions())
	m.ValidationConflicts = result.Conflicts

	if len(result.Conflicts) > 0 {
		m.ValidationWarning = fmt.Sprintf("⚠ %d validation warning(s)", len(result.Conflicts))
	} else {
		m.ValidationWarning = ""
	}
}
