package system

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{
		Store: store,
	}

	cleanup := func() {
		store.Close()
	}

	return ctx, cleanup
}

// corruptHabit stores a habit whose counters the streak rules would never
// produce.
func corruptHabit(t *testing.T, ctx *cli.Context) int64 {
	t.Helper()
	bg := context.Background()
	id, err := ctx.Store.InsertHabit(bg, models.Habit{
		Name: "Read", Schedule: "daily", TargetValue: 2, ProgressDay: "2026-03-11", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to insert habit: %v", err)
	}
	h, _ := ctx.Store.GetHabit(bg, id)
	last := time.Now().Add(-time.Hour)
	h.CurrentValue = 5
	h.CurrentStreak = 3
	h.BestStreak = 1
	h.LastCompletedAt = &last
	h.Schedule = "3,1"
	h.NotificationTime = "7pm"
	if err := ctx.Store.UpdateHabit(bg, h); err != nil {
		t.Fatalf("failed to corrupt habit: %v", err)
	}
	return id
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	cmd := &DoctorCmd{}
	err := cmd.Run(ctx)

	// Should pass all checks (except backups which is a warning)
	if err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	db := ctx.Store.(*sqlite.Store).GetDB()
	if db == nil {
		t.Fatal("database connection is nil")
	}

	// Set an impossible future schema version
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if _, err := mgr.Create(context.Background()); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}

	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("expected backups to be found: %v", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
}

func TestDoctorCmd_CorruptHabit(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()
	corruptHabit(t, ctx)

	if err := checkHabitsIntegrity(ctx); err == nil {
		t.Error("expected habit integrity check to fail")
	}
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with a corrupt habit")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("UPDATE schema_version SET version = 0"); err != nil {
		t.Fatalf("failed to downgrade schema version: %v", err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := ctx.Store.Load(context.Background()); err != nil {
		t.Fatalf("failed to reload store: %v", err)
	}
	if err := checkMigrationsComplete(ctx); err != nil {
		t.Errorf("expected migrations complete after migrate: %v", err)
	}
}

func TestCheckSettings_InvalidTimezone(t *testing.T) {
	ctx, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	s := models.DefaultSettings()
	s.Timezone = "Nowhere/Special"
	if err := ctx.Store.SaveSettings(context.Background(), s); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if err := checkSettings(ctx); err == nil {
		t.Error("expected invalid timezone to fail")
	}
}

func TestCheckClockTimezone(t *testing.T) {
	ctx := &cli.Context{}
	if err := checkClockTimezone(ctx); err != nil {
		t.Errorf("clock/timezone check failed: %v", err)
	}

	ctx.Clock = func() time.Time { return time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := checkClockTimezone(ctx); err == nil {
		t.Error("expected a clock in 1999 to fail")
	}
}
