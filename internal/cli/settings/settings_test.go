package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	ctx := &cli.Context{
		Store: store,
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func stored(t *testing.T, ctx *cli.Context) models.Settings {
	t.Helper()
	s, err := ctx.Store.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	return s
}

func TestSettingsCmd_List(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &SettingsCmd{
		List: true,
	}

	err := cmd.Run(ctx)
	if err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_UpdateNotifications(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	newValue := !stored(t, ctx).NotificationsEnabled
	cmd := &SettingsCmd{
		NotificationsEnabled: &newValue,
	}

	if err := cmd.Run(ctx); err != nil {
		t.Errorf("settings update failed: %v", err)
	}

	if got := stored(t, ctx).NotificationsEnabled; got != newValue {
		t.Errorf("expected NotificationsEnabled to be %v, got %v", newValue, got)
	}
}

func TestSettingsCmd_UpdateView(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	filter := "Uncompleted"
	sort := "streak"
	ascending := false
	category := " health "
	cmd := &SettingsCmd{
		Filter:        &filter,
		Sort:          &sort,
		NameAscending: &ascending,
		Category:      &category,
	}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	s := stored(t, ctx)
	if s.DefaultFilter != "uncompleted" {
		t.Errorf("expected filter uncompleted, got %q", s.DefaultFilter)
	}
	if s.DefaultSort != "streak" {
		t.Errorf("expected sort streak, got %q", s.DefaultSort)
	}
	if s.NameAscending {
		t.Error("expected NameAscending to be false")
	}
	if s.DefaultCategory != "health" {
		t.Errorf("expected category health, got %q", s.DefaultCategory)
	}
}

func TestSettingsCmd_UpdateTimezone(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	tz := "America/New_York"
	if err := (&SettingsCmd{Timezone: &tz}).Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	if got := stored(t, ctx).Timezone; got != tz {
		t.Errorf("expected timezone %q, got %q", tz, got)
	}
}

func TestSettingsCmd_RejectsInvalidValues(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	bad := "Mars/Olympus_Mons"
	if err := (&SettingsCmd{Timezone: &bad}).Run(ctx); err == nil {
		t.Error("expected error for invalid timezone")
	}

	filter := "someday"
	if err := (&SettingsCmd{Filter: &filter}).Run(ctx); err == nil {
		t.Error("expected error for invalid filter")
	}

	sort := "color"
	if err := (&SettingsCmd{Sort: &sort}).Run(ctx); err == nil {
		t.Error("expected error for invalid sort")
	}

	if stored(t, ctx) != models.DefaultSettings() {
		t.Error("invalid updates must not change stored settings")
	}
}

func TestSettingsCmd_NoChanges(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&SettingsCmd{}).Run(ctx); err != nil {
		t.Errorf("settings with no flags failed: %v", err)
	}
}
