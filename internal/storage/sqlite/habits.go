package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
)

func (s *Store) InsertHabit(ctx context.Context, habit models.Habit) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (name, icon, color, category, schedule, target_value, current_value,
			progress_day, created_at, last_completed_at, current_streak, best_streak, notification_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.Name, habit.Icon, habit.Color, habit.Category, habit.Schedule,
		habit.TargetValue, habit.CurrentValue, habit.ProgressDay,
		storage.FormatTime(habit.CreatedAt), storage.NullTime(habit.LastCompletedAt),
		habit.CurrentStreak, habit.BestStreak, habit.NotificationTime)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetHabit(ctx context.Context, id int64) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+storage.HabitColumns+" FROM habits WHERE id = ?", id)
	h, err := storage.ScanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %d: %w", id, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetAllHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+storage.HabitColumns+" FROM habits ORDER BY id")
	if err != nil {
		return nil, err
	}
	return storage.CollectHabits(rows)
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	return updateHabit(ctx, s.db, habit)
}

func (s *Store) SaveProgress(ctx context.Context, habit models.Habit, record *models.CompletionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateHabit(ctx, tx, habit); err != nil {
		return err
	}
	if record != nil {
		if err := upsertCompletion(ctx, tx, *record); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteHabit(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The foreign key cascades too; this keeps databases opened without the
	// pragma consistent.
	if _, err := tx.ExecContext(ctx, "DELETE FROM completion_records WHERE habit_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM completion_records"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM habits"); err != nil {
		return err
	}
	return tx.Commit()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateHabit(ctx context.Context, db execer, habit models.Habit) error {
	result, err := db.ExecContext(ctx, `
		UPDATE habits SET
			name = ?, icon = ?, color = ?, category = ?, schedule = ?,
			target_value = ?, current_value = ?, progress_day = ?,
			last_completed_at = ?, current_streak = ?, best_streak = ?, notification_time = ?
		WHERE id = ?`,
		habit.Name, habit.Icon, habit.Color, habit.Category, habit.Schedule,
		habit.TargetValue, habit.CurrentValue, habit.ProgressDay,
		storage.NullTime(habit.LastCompletedAt), habit.CurrentStreak, habit.BestStreak,
		habit.NotificationTime, habit.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %d: %w", habit.ID, storage.ErrNotFound)
	}
	return nil
}
