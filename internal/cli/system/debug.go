package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/utils"
)

type DebugCmd struct {
	DBPath          *DebugDBPathCmd          `cmd:"" help:"Show database path."`
	DumpHabit       *DebugDumpHabitCmd       `cmd:"" help:"Dump habit data as JSON."`
	DumpCompletions *DebugDumpCompletionsCmd `cmd:"" help:"Dump completion records for a day as JSON."`
	DumpSettings    *DebugDumpSettingsCmd    `cmd:"" help:"Dump settings data as JSON."`
}

func printJSON(v any, what string) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()}, "output")
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	id, err := strconv.ParseInt(cmd.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid habit id: %s", cmd.ID)
	}

	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	habit, err := ctx.Store.GetHabit(ctx.Ctx(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}

	return printJSON(habit, "habit")
}

type DebugDumpCompletionsCmd struct {
	Day     string `arg:"" optional:"" help:"Day to dump (YYYY-MM-DD, 'today' or 'yesterday'; default today)."`
	Deleted bool   `help:"Include soft-deleted records from every day."`
}

func (cmd *DebugDumpCompletionsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if cmd.Deleted {
		records, err := ctx.Store.GetAllCompletions(ctx.Ctx(), true)
		if err != nil {
			return fmt.Errorf("failed to get completion records: %w", err)
		}
		return printJSON(records, "completion records")
	}

	day, err := ctx.ParseDay(ctx.Ctx(), cmd.Day)
	if err != nil {
		return err
	}
	records, err := ctx.Store.GetCompletionsForDay(ctx.Ctx(), utils.DayKey(day))
	if err != nil {
		return fmt.Errorf("failed to get completion records: %w", err)
	}
	return printJSON(records, "completion records")
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	settings, err := ctx.Store.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	return printJSON(settings, "settings")
}
