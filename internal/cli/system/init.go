package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing data before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx()); err != nil {
		return err
	}
	fmt.Printf("Initialized routinely storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			if err := ctx.Store.DeleteAll(ctx.Ctx()); err != nil {
				return fmt.Errorf("failed to clear existing data: %w", err)
			}
		}
	}

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		source, err := cli.OpenProvider(c.Source)
		if err != nil {
			return err
		}
		if err := source.Load(ctx.Ctx()); err != nil {
			return fmt.Errorf("failed to load source database: %w", err)
		}
		defer source.Close()

		if err := copyData(ctx.Ctx(), source, ctx.Store); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

// reset deletes an existing SQLite file. Other backends are cleared after
// Init instead.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		// Don't delete if it's the source
		if abs, err := filepath.Abs(cli.ExpandPath(c.Source)); err == nil && abs == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyData moves settings, habits and completion history from src into dst.
// Habit ids are reassigned by dst, so records are remapped as they are
// copied.
func copyData(ctx context.Context, src, dst storage.Provider) error {
	fmt.Println("  Migrating settings...")
	settings, err := src.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating habits...")
	habits, err := src.GetAllHabits(ctx)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	ids := make(map[int64]int64, len(habits))
	for _, h := range habits {
		id, err := dst.InsertHabit(ctx, h)
		if err != nil {
			return fmt.Errorf("failed to add habit %q: %w", h.Name, err)
		}
		ids[h.ID] = id
	}
	fmt.Printf("    Migrated %d habits\n", len(habits))

	fmt.Println("  Migrating completion records...")
	records, err := src.GetAllCompletions(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to get completion records from source: %w", err)
	}
	copied := 0
	for _, r := range records {
		id, ok := ids[r.HabitID]
		if !ok {
			continue
		}
		r.HabitID = id
		if err := dst.UpsertCompletion(ctx, r); err != nil {
			return fmt.Errorf("failed to add completion record %s: %w", r.ID, err)
		}
		copied++
	}
	fmt.Printf("    Migrated %d completion records\n", copied)

	return nil
}
