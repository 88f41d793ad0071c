package backups

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/postgres"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "routinely.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })
	return &cli.Context{Store: store, Timezone: "UTC"}
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx := setupTestDB(t)
	habits, err := ctx.Habits(ctx.Ctx())
	require.NoError(t, err)
	_, err = habits.Create(ctx.Ctx(), models.HabitDraft{Name: "Read", Schedule: "daily", TargetValue: 1})
	require.NoError(t, err)

	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	require.NoError(t, (&BackupListCmd{}).Run(ctx))

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = habits.Create(ctx.Ctx(), models.HabitDraft{Name: "Run", Schedule: "daily", TargetValue: 1})
	require.NoError(t, err)

	require.NoError(t, (&BackupRestoreCmd{BackupFile: list[0].Name(), Yes: true}).Run(ctx))

	reopened := sqlite.NewStore(ctx.Store.GetConfigPath())
	require.NoError(t, reopened.Load(context.Background()))
	defer reopened.Close()
	all, err := reopened.GetAllHabits(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Read", all[0].Name)
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx := setupTestDB(t)
	err := (&BackupRestoreCmd{BackupFile: "routinely-19990101-000000.db", Yes: true}).Run(ctx)
	assert.Error(t, err)

	err = (&BackupRestoreCmd{Yes: true}).Run(ctx)
	assert.ErrorIs(t, err, backup.ErrNoBackups)
}

func TestBackupListEmpty(t *testing.T) {
	ctx := setupTestDB(t)
	assert.NoError(t, (&BackupListCmd{}).Run(ctx))
}

func TestBackupRequiresSQLite(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://localhost/routinely")}
	assert.ErrorIs(t, (&BackupCreateCmd{}).Run(ctx), errNotSQLite)
	assert.ErrorIs(t, (&BackupListCmd{}).Run(ctx), errNotSQLite)
}
