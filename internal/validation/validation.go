// Package validation checks stored habits and completion records for values
// the streak rules would never produce, and proposes repairs.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictInvalidTarget      ConflictType = "invalid_target"
	ConflictProgressOutOfRange ConflictType = "progress_out_of_range"
	ConflictStreakInconsistent ConflictType = "streak_inconsistent"
	ConflictInvalidSchedule    ConflictType = "invalid_schedule"
	ConflictEmptySchedule      ConflictType = "empty_schedule"
	ConflictInvalidReminder    ConflictType = "invalid_reminder"
	ConflictInvalidDateTime    ConflictType = "invalid_datetime"
	ConflictOrphanRecord       ConflictType = "orphan_record"
)

// Conflict represents a detected problem in a habit or completion record
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []int64
	RecordIDs   []string
	// Fixable reports whether Fix knows how to repair it.
	Fixable bool
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string   // Human-readable description of the action
	SourceConflict Conflict // The conflict that triggered this fix action
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Fixable counts conflicts Fix can repair.
func (vr *ValidationResult) Fixable() int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Fixable {
			n++
		}
	}
	return n
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		suffix := ""
		if conflict.Fixable {
			suffix = " (fixable)"
		}
		fmt.Fprintf(&b, "- %s%s\n", conflict.Description, suffix)
	}
	return b.String()
}

// Validator validates habits and completion records
type Validator struct {
	now func() time.Time
}

// New creates a new Validator
func New() *Validator {
	return &Validator{now: time.Now}
}

// WithClock replaces time.Now, for tests.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// ValidateHabits checks every habit on its own, names across habits, and
// completion records against the habits they belong to.
func (v *Validator) ValidateHabits(habits []models.Habit, records []models.CompletionRecord) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	now := v.now()

	// Check for duplicate habit names
	byName := make(map[string][]models.Habit)
	for _, h := range habits {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if key == "" {
			continue
		}
		byName[key] = append(byName[key], h)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := byName[name]
		if len(group) < 2 {
			continue
		}
		ids := make([]int64, len(group))
		for i, h := range group {
			ids[i] = h.ID
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictDuplicateHabitName,
			Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", group[0].Name, ids),
			Items:       []string{group[0].Name},
			HabitIDs:    ids,
		})
	}

	for _, h := range habits {
		result.Conflicts = append(result.Conflicts, checkHabit(h, now)...)
	}

	known := make(map[int64]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}
	for _, r := range records {
		if !r.Active() {
			continue
		}
		if !known[r.HabitID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanRecord,
				Description: fmt.Sprintf("Completion record %s on %s references missing habit %d", r.ID, r.Day, r.HabitID),
				HabitIDs:    []int64{r.HabitID},
				RecordIDs:   []string{r.ID},
				Fixable:     true,
			})
			continue
		}
		if !isValidDay(r.Day) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Completion record %s has invalid day: %q", r.ID, r.Day),
				HabitIDs:    []int64{r.HabitID},
				RecordIDs:   []string{r.ID},
				Fixable:     true,
			})
		}
	}

	return result
}

func checkHabit(h models.Habit, now time.Time) []Conflict {
	var out []Conflict
	add := func(t ConflictType, fixable bool, format string, args ...any) {
		out = append(out, Conflict{
			Type:        t,
			Description: fmt.Sprintf("Habit %q: ", h.Name) + fmt.Sprintf(format, args...),
			Items:       []string{h.Name},
			HabitIDs:    []int64{h.ID},
			Fixable:     fixable,
		})
	}

	if h.TargetValue < 1 {
		add(ConflictInvalidTarget, true, "target value %d is below 1", h.TargetValue)
	}
	target := max(h.TargetValue, 1)
	if h.CurrentValue < 0 || h.CurrentValue > target {
		add(ConflictProgressOutOfRange, true, "current value %d is outside 0..%d", h.CurrentValue, target)
	}
	if h.CurrentStreak < 0 || h.BestStreak < 0 {
		add(ConflictStreakInconsistent, true, "negative streak (current %d, best %d)", h.CurrentStreak, h.BestStreak)
	} else if h.CurrentStreak > h.BestStreak {
		add(ConflictStreakInconsistent, true, "current streak %d exceeds best streak %d", h.CurrentStreak, h.BestStreak)
	}
	if h.CurrentStreak > 0 && h.LastCompletedAt == nil {
		add(ConflictStreakInconsistent, false, "streak of %d but no recorded completion", h.CurrentStreak)
	}
	if h.LastCompletedAt != nil && h.LastCompletedAt.After(now.Add(time.Minute)) {
		add(ConflictInvalidDateTime, false, "last completion %s is in the future", h.LastCompletedAt.Format(time.RFC3339))
	}

	if canonical := canonicalSchedule(h.Schedule); len(schedule.Decode(h.Schedule)) == 0 {
		add(ConflictEmptySchedule, false, "schedule %q is due on no day", h.Schedule)
	} else if canonical != h.Schedule {
		add(ConflictInvalidSchedule, true, "schedule %q should be %q", h.Schedule, canonical)
	}

	if h.NotificationTime != "" && !utils.ValidateTimeFormat(h.NotificationTime) {
		add(ConflictInvalidReminder, true, "invalid reminder time: %s", h.NotificationTime)
	}
	if !isValidDay(h.ProgressDay) {
		add(ConflictInvalidDateTime, true, "invalid progress day: %q", h.ProgressDay)
	}
	return out
}

// Fix repairs the fixable conflicts in result. It returns the habits and
// records that changed, ready to be written back, and the actions taken.
// Orphan and malformed records are soft-deleted.
func (v *Validator) Fix(result ValidationResult, habits []models.Habit, records []models.CompletionRecord) ([]models.Habit, []models.CompletionRecord, []FixAction) {
	now := v.now()
	byID := make(map[int64]models.Habit, len(habits))
	for _, h := range habits {
		byID[h.ID] = h
	}
	recByID := make(map[string]models.CompletionRecord, len(records))
	for _, r := range records {
		recByID[r.ID] = r
	}

	changedHabits := make(map[int64]bool)
	changedRecords := make(map[string]bool)
	var actions []FixAction

	for _, c := range result.Conflicts {
		if !c.Fixable {
			continue
		}
		switch c.Type {
		case ConflictOrphanRecord, ConflictInvalidDateTime:
			if len(c.RecordIDs) > 0 {
				for _, id := range c.RecordIDs {
					r, ok := recByID[id]
					if !ok {
						continue
					}
					deleted := now
					r.DeletedAt = &deleted
					r.UpdatedAt = now
					recByID[id] = r
					changedRecords[id] = true
					actions = append(actions, FixAction{
						Action:         fmt.Sprintf("Removed completion record %s", id),
						SourceConflict: c,
					})
				}
				continue
			}
			fallthrough
		default:
			for _, id := range c.HabitIDs {
				h, ok := byID[id]
				if !ok {
					continue
				}
				fixed, desc := repair(h, c.Type, now)
				if desc == "" {
					continue
				}
				byID[id] = fixed
				changedHabits[id] = true
				actions = append(actions, FixAction{
					Action:         fmt.Sprintf("Habit %q: %s", h.Name, desc),
					SourceConflict: c,
				})
			}
		}
	}

	var outHabits []models.Habit
	for _, h := range habits {
		if changedHabits[h.ID] {
			outHabits = append(outHabits, byID[h.ID])
		}
	}
	var outRecords []models.CompletionRecord
	for _, r := range records {
		if changedRecords[r.ID] {
			outRecords = append(outRecords, recByID[r.ID])
		}
	}
	return outHabits, outRecords, actions
}

func repair(h models.Habit, t ConflictType, now time.Time) (models.Habit, string) {
	switch t {
	case ConflictInvalidTarget:
		h.TargetValue = constants.DefaultTarget
		h.CurrentValue = min(max(h.CurrentValue, 0), h.TargetValue)
		return h, fmt.Sprintf("set target to %d", h.TargetValue)
	case ConflictProgressOutOfRange:
		h.CurrentValue = min(max(h.CurrentValue, 0), max(h.TargetValue, 1))
		return h, fmt.Sprintf("clamped current value to %d", h.CurrentValue)
	case ConflictStreakInconsistent:
		h.CurrentStreak = max(h.CurrentStreak, 0)
		h.BestStreak = max(h.BestStreak, h.CurrentStreak)
		return h, fmt.Sprintf("set streaks to %d (best %d)", h.CurrentStreak, h.BestStreak)
	case ConflictInvalidSchedule:
		h.Schedule = canonicalSchedule(h.Schedule)
		return h, fmt.Sprintf("rewrote schedule as %q", h.Schedule)
	case ConflictInvalidReminder:
		h.NotificationTime = ""
		return h, "cleared reminder"
	case ConflictInvalidDateTime:
		h.ProgressDay = utils.DayKey(now)
		h.CurrentValue = 0
		return h, fmt.Sprintf("reset progress day to %s", h.ProgressDay)
	}
	return h, ""
}

func canonicalSchedule(token string) string {
	return schedule.Encode(schedule.Decode(token).Days())
}

func isValidDay(day string) bool {
	_, err := time.Parse(constants.DateFormat, day)
	return err == nil
}
