// Package reminder turns habit notification times into daily reminders.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/streak"
	"github.com/julianstephens/routinely/internal/utils"
)

// Reminder asks for a daily notification at TimeOfDay (HH:MM).
type Reminder struct {
	HabitID   int64
	Name      string
	TimeOfDay string
}

// Scheduler is the downstream collaborator notified when habits are saved
// or deleted.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) error
	Cancel(ctx context.Context, habitID int64) error
}

// Notifier delivers reminder text to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ForHabit returns the reminder a habit asks for, if any.
func ForHabit(h models.Habit) (Reminder, bool) {
	if !h.HasReminder() {
		return Reminder{}, false
	}
	return Reminder{HabitID: h.ID, Name: h.Name, TimeOfDay: h.NotificationTime}, true
}

// Sync applies the save effect for h: schedule when it has a notification
// time, cancel otherwise.
func Sync(ctx context.Context, s Scheduler, h models.Habit) error {
	if r, ok := ForHabit(h); ok {
		return s.Schedule(ctx, r)
	}
	return s.Cancel(ctx, h.ID)
}

// Pending reports whether h still needs a nudge at now: it is due on now's
// weekday and not yet completed today.
func Pending(h models.Habit, now time.Time) bool {
	return schedule.IsDueAt(h.Schedule, now) && !streak.CompletedOn(h, now)
}

// Due returns the reminders set for now's minute whose habits are pending.
func Due(habits []models.Habit, now time.Time) []Reminder {
	hhmm := now.Format(constants.TimeFormat)
	var out []Reminder
	for _, h := range habits {
		r, ok := ForHabit(h)
		if !ok || r.TimeOfDay != hhmm || !Pending(h, now) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Message is the text shown when a reminder fires.
func Message(r Reminder) string {
	return fmt.Sprintf("Time for %s", r.Name)
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	mins, err := utils.ParseTimeToMinutes(s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q: %w", s, err)
	}
	return mins / 60, mins % 60, nil
}

// Log records reminder intents without delivering anything. One-shot CLI
// commands use it; the long-running remind process owns real delivery and
// picks up changes on its next refresh.
type Log struct{}

func (Log) Schedule(_ context.Context, r Reminder) error {
	if _, _, err := parseTimeOfDay(r.TimeOfDay); err != nil {
		return err
	}
	logger.Debug("Reminder requested", "habit_id", r.HabitID, "time", r.TimeOfDay)
	return nil
}

func (Log) Cancel(_ context.Context, habitID int64) error {
	logger.Debug("Reminder cancelled", "habit_id", habitID)
	return nil
}
