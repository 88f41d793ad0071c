package sqlite

import (
	"context"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage"
)

func (s *Store) UpsertCompletion(ctx context.Context, record models.CompletionRecord) error {
	return upsertCompletion(ctx, s.db, record)
}

func (s *Store) GetCompletionsForDay(ctx context.Context, day string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.CompletionColumns+`
		FROM completion_records WHERE day = ? AND deleted_at IS NULL
		ORDER BY completed_at`, day)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func (s *Store) GetCompletionsInRange(ctx context.Context, startDay, endDay string) ([]models.CompletionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+storage.CompletionColumns+`
		FROM completion_records
		WHERE day >= ? AND day <= ? AND deleted_at IS NULL
		ORDER BY day, habit_id`, startDay, endDay)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func (s *Store) GetAllCompletions(ctx context.Context, includeDeleted bool) ([]models.CompletionRecord, error) {
	query := "SELECT " + storage.CompletionColumns + " FROM completion_records"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY day, habit_id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return storage.CollectCompletions(rows)
}

func upsertCompletion(ctx context.Context, db execer, record models.CompletionRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO completion_records (id, habit_id, day, completed_at, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		record.ID, record.HabitID, record.Day,
		storage.FormatTime(record.CompletedAt), storage.FormatTime(record.CreatedAt),
		storage.FormatTime(record.UpdatedAt), storage.NullTime(record.DeletedAt))
	return err
}
