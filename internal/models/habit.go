package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Icon             string     `json:"icon,omitempty"`
	Color            string     `json:"color,omitempty"`
	Category         string     `json:"category,omitempty"`
	Schedule         string     `json:"schedule"` // "daily" or ISO weekdays, e.g. "1,3,5"
	TargetValue      int        `json:"target_value"`
	CurrentValue     int        `json:"current_value"`
	ProgressDay      string     `json:"progress_day,omitempty"` // YYYY-MM-DD the current value belongs to
	CreatedAt        time.Time  `json:"created_at"`
	LastCompletedAt  *time.Time `json:"last_completed_at,omitempty"`
	CurrentStreak    int        `json:"current_streak"`
	BestStreak       int        `json:"best_streak"`
	NotificationTime string     `json:"notification_time,omitempty"` // HH:MM format
}

// IsBinary reports whether the habit is a plain done/not-done habit.
func (h Habit) IsBinary() bool {
	return h.TargetValue <= 1
}

// HasReminder reports whether a daily reminder should be scheduled.
func (h Habit) HasReminder() bool {
	return h.NotificationTime != ""
}

// Draft returns the user-editable fields of the habit.
func (h Habit) Draft() HabitDraft {
	return HabitDraft{
		Name:             h.Name,
		Icon:             h.Icon,
		Color:            h.Color,
		Category:         h.Category,
		Schedule:         h.Schedule,
		TargetValue:      h.TargetValue,
		NotificationTime: h.NotificationTime,
	}
}

// WithDraft copies the editable fields of d onto the habit. Progress and
// streak fields are left alone; a lowered target clamps the current value
// without completing the day.
func (h Habit) WithDraft(d HabitDraft) Habit {
	h.Name = strings.TrimSpace(d.Name)
	h.Icon = d.Icon
	h.Color = d.Color
	h.Category = strings.TrimSpace(d.Category)
	h.Schedule = d.Schedule
	h.TargetValue = d.TargetValue
	h.NotificationTime = d.NotificationTime
	if h.CurrentValue > h.TargetValue {
		h.CurrentValue = h.TargetValue
	}
	return h
}

// HabitDraft holds the fields a user supplies when creating or editing a habit.
type HabitDraft struct {
	Name             string
	Icon             string
	Color            string
	Category         string
	Schedule         string
	TargetValue      int
	NotificationTime string
}

// Normalize fills in defaults for omitted fields.
func (d HabitDraft) Normalize() HabitDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	if d.Schedule == "" {
		d.Schedule = constants.DefaultSchedule
	}
	if d.TargetValue == 0 {
		d.TargetValue = constants.DefaultTarget
	}
	return d
}

// Validate checks the draft. Schedule tokens are checked for shape only;
// callers encode them through the schedule package.
func (d HabitDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &InvalidHabitError{Field: "name", Reason: "cannot be empty"}
	}
	if d.TargetValue < 1 {
		return &InvalidHabitError{Field: "target_value", Reason: fmt.Sprintf("must be at least 1, got %d", d.TargetValue)}
	}
	if d.NotificationTime != "" {
		if _, err := time.Parse(constants.TimeFormat, d.NotificationTime); err != nil {
			return &InvalidHabitError{Field: "notification_time", Reason: "expected HH:MM"}
		}
	}
	return nil
}

// InvalidHabitError is returned when a habit draft fails validation.
type InvalidHabitError struct {
	Field  string
	Reason string
}

func (e *InvalidHabitError) Error() string {
	return fmt.Sprintf("invalid habit: %s %s", e.Field, e.Reason)
}

// CompletionRecord marks a habit as completed on a calendar day
type CompletionRecord struct {
	ID          string     `json:"id"`
	HabitID     int64      `json:"habit_id"`
	Day         string     `json:"day"` // YYYY-MM-DD format
	CompletedAt time.Time  `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the record still counts as a completion.
func (r CompletionRecord) Active() bool {
	return r.DeletedAt == nil
}
