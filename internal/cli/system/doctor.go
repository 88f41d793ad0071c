package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
	"github.com/julianstephens/routinely/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warnOnly failures are reported but do not fail the run.
	warnOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Habit integrity", run: checkHabitsIntegrity, needsDB: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx.Ctx(), "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, ok bool, err error) {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return 0, 0, false, nil
	}
	current, latest, err = m.SchemaVersion(ctx.Ctx())
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'routinely migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'routinely backup create'")
	}

	return nil
}

func checkSettings(ctx *cli.Context) error {
	s, err := ctx.Store.GetSettings(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(s.Timezone) {
		return fmt.Errorf("invalid timezone setting %q (fix with 'routinely settings --timezone')", s.Timezone)
	}
	if s.DefaultFilter != "" {
		if _, err := projection.ParseFilter(s.DefaultFilter); err != nil {
			return err
		}
	}
	if s.DefaultSort != "" {
		if _, err := projection.ParseSort(s.DefaultSort); err != nil {
			return err
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if ctx.Clock != nil {
		now = ctx.Clock()
	}

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if ctx.Timezone != "" && !utils.ValidateTimezone(ctx.Timezone) {
		return fmt.Errorf("invalid --timezone %q", ctx.Timezone)
	}
	return nil
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	result, err := validate(ctx)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d problem(s) found; run 'routinely validate' for details", len(result.Conflicts))
	}
	return nil
}
