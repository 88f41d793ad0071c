package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/streak"
)

func TestResetCmd_ClearsHabitsAndKeepsSettings(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	h := createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1})
	createHabit(t, ctx, models.HabitDraft{Name: "Read", Schedule: "1,3", TargetValue: 2})

	store, err := ctx.Habits(ctx.Ctx())
	require.NoError(t, err)
	_, err = store.Apply(ctx.Ctx(), h.ID, streak.Toggle{Checked: true})
	require.NoError(t, err)

	settings, err := ctx.Settings(ctx.Ctx())
	require.NoError(t, err)
	settings.DefaultCategory = "health"
	require.NoError(t, ctx.SaveSettings(ctx.Ctx(), settings))

	require.NoError(t, (&ResetCmd{Yes: true}).Run(ctx))

	assert.Empty(t, store.Habits())
	all, err := ctx.Store.GetAllHabits(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	records, err := ctx.Store.GetAllCompletions(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, records)

	kept, err := ctx.Store.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "health", kept.DefaultCategory)

	backups, err := filepath.Glob(filepath.Join(backup.NewManager(ctx.Store.GetConfigPath()).Dir(), "*"))
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
}

func TestResetCmd_EmptyStore(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	require.NoError(t, (&ResetCmd{Yes: true}).Run(ctx))
	_, err := os.Stat(ctx.Store.GetConfigPath())
	assert.NoError(t, err)
}
