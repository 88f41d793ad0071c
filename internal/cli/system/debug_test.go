package system

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

func setupTestDebugDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{
		Store:    store,
		Timezone: "UTC",
	}

	cleanup := func() {
		store.Close()
	}

	return ctx, cleanup
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	// Capture stdout would be needed for full test, but we can at least
	// verify it doesn't error
	cmd := &DebugDBPathCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpHabitCmd_Success(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	id, err := ctx.Store.InsertHabit(context.Background(), models.Habit{
		Name:        "Test Habit",
		Schedule:    "daily",
		TargetValue: 1,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to add test habit: %v", err)
	}

	cmd := &DebugDumpHabitCmd{ID: strconv.FormatInt(id, 10)}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("debug dump-habit command failed: %v", err)
	}
}

func TestDebugDumpHabitCmd_NotFound(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	err := (&DebugDumpHabitCmd{ID: "999"}).Run(ctx)
	if err == nil {
		t.Fatal("expected error for non-existent habit")
	}
	if !strings.Contains(err.Error(), "habit not found") {
		t.Errorf("expected 'habit not found' error, got: %v", err)
	}
}

func TestDebugDumpHabitCmd_InvalidID(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := (&DebugDumpHabitCmd{ID: "abc"}).Run(ctx); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestDebugDumpCompletionsCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	tests := []struct {
		name    string
		cmd     DebugDumpCompletionsCmd
		wantErr bool
	}{
		{"default today", DebugDumpCompletionsCmd{}, false},
		{"explicit date", DebugDumpCompletionsCmd{Day: "2026-03-11"}, false},
		{"yesterday", DebugDumpCompletionsCmd{Day: "yesterday"}, false},
		{"with deleted", DebugDumpCompletionsCmd{Deleted: true}, false},
		{"invalid date", DebugDumpCompletionsCmd{Day: "11/03/2026"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebugDumpSettingsCmd(t *testing.T) {
	ctx, cleanup := setupTestDebugDB(t)
	defer cleanup()

	if err := (&DebugDumpSettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("debug dump-settings command failed: %v", err)
	}
}
