package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/routinely/internal/models"
)

// ErrNotFound is returned by point lookups that match no live row.
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Habits
	// InsertHabit stores a new habit and returns the id assigned to it. The
	// habit's own ID field is ignored.
	InsertHabit(ctx context.Context, habit models.Habit) (int64, error)
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	GetAllHabits(ctx context.Context) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// SaveProgress writes the habit's progress and streak fields and, when
	// record is non-nil, upserts the completion record in the same
	// transaction.
	SaveProgress(ctx context.Context, habit models.Habit, record *models.CompletionRecord) error
	// DeleteHabit removes the habit and its completion records. Unknown ids
	// are not an error.
	DeleteHabit(ctx context.Context, id int64) error
	// DeleteAll removes every habit and completion record. Settings survive.
	DeleteAll(ctx context.Context) error

	// Completion records
	// UpsertCompletion inserts or replaces the record keyed by (habit, day).
	// On conflict the stored id and created_at are kept.
	UpsertCompletion(ctx context.Context, record models.CompletionRecord) error
	GetCompletionsForDay(ctx context.Context, day string) ([]models.CompletionRecord, error)
	GetCompletionsInRange(ctx context.Context, startDay, endDay string) ([]models.CompletionRecord, error)
	GetAllCompletions(ctx context.Context, includeDeleted bool) ([]models.CompletionRecord, error)

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers backed by versioned SQL schemas.
type Migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}
