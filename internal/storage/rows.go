package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/models"
)

// Both SQL backends store timestamps as RFC3339 text and share these column
// lists and scanners.

const HabitColumns = `id, name, icon, color, category, schedule, target_value, current_value,
	progress_day, created_at, last_completed_at, current_streak, best_streak, notification_time`

const CompletionColumns = `id, habit_id, day, completed_at, created_at, updated_at, deleted_at`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanHabit reads one row selected with HabitColumns.
func ScanHabit(row RowScanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var lastCompletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Name, &h.Icon, &h.Color, &h.Category, &h.Schedule,
		&h.TargetValue, &h.CurrentValue, &h.ProgressDay, &createdAt, &lastCompletedAt,
		&h.CurrentStreak, &h.BestStreak, &h.NotificationTime)
	if err != nil {
		return models.Habit{}, err
	}

	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %d: %w", h.ID, err)
	}
	h.LastCompletedAt, err = ParseNullTime(lastCompletedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse last_completed_at for habit %d: %w", h.ID, err)
	}
	return h, nil
}

// ScanCompletion reads one row selected with CompletionColumns.
func ScanCompletion(row RowScanner) (models.CompletionRecord, error) {
	var r models.CompletionRecord
	var completedAt, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(&r.ID, &r.HabitID, &r.Day, &completedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.CompletionRecord{}, err
	}

	if r.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse completed_at for record %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse created_at for record %s: %w", r.ID, err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse updated_at for record %s: %w", r.ID, err)
	}
	if r.DeletedAt, err = ParseNullTime(deletedAt); err != nil {
		return models.CompletionRecord{}, fmt.Errorf("failed to parse deleted_at for record %s: %w", r.ID, err)
	}
	return r, nil
}

// CollectHabits drains rows into a slice, closing them.
func CollectHabits(rows *sql.Rows) ([]models.Habit, error) {
	defer rows.Close()
	habits := []models.Habit{}
	for rows.Next() {
		h, err := ScanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CollectCompletions drains rows into a slice, closing them.
func CollectCompletions(rows *sql.Rows) ([]models.CompletionRecord, error) {
	defer rows.Close()
	records := []models.CompletionRecord{}
	for rows.Next() {
		r, err := ScanCompletion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// NullTime renders an optional timestamp for storage.
func NullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseNullTime is the inverse of NullTime.
func ParseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
