package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/cli/backups"
	"github.com/julianstephens/routinely/internal/cli/habits"
	"github.com/julianstephens/routinely/internal/cli/settings"
	"github.com/julianstephens/routinely/internal/cli/stats"
	"github.com/julianstephens/routinely/internal/cli/system"
	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/errors"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite file path, PostgreSQL connection string, or 'keyring'. PostgreSQL passwords must NOT be embedded in the connection string; store them with 'routinely keyring set'." type:"string" default:"${default_config}" env:"ROUTINELY_CONFIG"`
	DebugLog bool   `name:"debug" help:"Log debug output to stderr as well as the log file." env:"ROUTINELY_DEBUG"`
	Timezone string `help:"Override the timezone setting for this run." env:"ROUTINELY_TIMEZONE"`

	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and record progress."`
	Stats    stats.StatsCmd       `cmd:"" help:"Show completion statistics."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Init     system.InitCmd     `cmd:"" help:"Initialize routinely storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored habits for inconsistencies."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the database connection stored in the OS keyring."`
	Remind   system.RemindCmd   `cmd:"" help:"Deliver habit reminders until interrupted."`
	Reset    system.ResetCmd    `cmd:"" help:"Delete all habits and their history."`
	Notify   system.NotifyCmd   `cmd:"" hidden:"" help:"Send the reminders due this minute (used by OS schedulers)."`
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with streaks, reminders and statistics"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.DebugLog, ConfigDir: configDir(CLI.Config)}); err != nil {
		// Logging is best effort; commands still run.
		_, _ = os.Stderr.WriteString("warning: could not open log file: " + err.Error() + "\n")
	}
	defer logger.Close()

	store, err := cli.OpenProvider(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	base, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Base:     base,
		Store:    store,
		Timezone: CLI.Timezone,
	}

	logger.Debug("Running command", "command", ctx.Command())
	err = ctx.Run(appCtx)
	_ = store.Close()
	if err != nil {
		stop()
		errors.Fatal(err)
	}
}

// configDir is where logs go: next to a SQLite file, otherwise the user
// config directory.
func configDir(config string) string {
	if !strings.EqualFold(config, keyring.Source) && !keyring.IsPostgres(config) {
		return filepath.Dir(cli.ExpandPath(config))
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, constants.AppName)
}
