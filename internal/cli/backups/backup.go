package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

var errNotSQLite = errors.New("backups are only supported for SQLite storage; use pg_dump for PostgreSQL")

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, errNotSQLite
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create(ctx.Ctx())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	fmt.Printf("✓ Backup created: %s (%s)\n", info.Name(), humanize.Bytes(uint64(info.Size)))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Println("No backups found.")
		fmt.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		fmt.Printf("  %s  %s  (%s, %s)\n",
			b.Timestamp.Format("2006-01-02 15:04:05"),
			b.Name(),
			humanize.Bytes(uint64(b.Size)),
			humanize.Time(b.Timestamp),
		)
	}
	fmt.Printf("\nBackup directory: %s\n", mgr.Dir())

	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" optional:"" help:"Path or filename of the backup to restore (default: most recent)."`
	Yes        bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	backupPath, err := c.locate(mgr)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Println("⚠️  WARNING: This will replace your current database with the backup.")
		fmt.Println("⚠️  IMPORTANT: All routinely processes (including the TUI and reminders) must be stopped first.")
		fmt.Println("A backup of your current database will be created before restoring.")
		fmt.Printf("\nRestore from: %s\n", backupPath)
		ok, err := cli.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Restore cancelled.")
			return nil
		}
	}

	// Close the current store connection before restoring
	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	safety, err := mgr.Restore(ctx.Ctx(), backupPath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("✓ Database restored successfully!")
	if safety.Path != "" {
		fmt.Printf("  Previous database saved as %s\n", safety.Name())
	}
	return nil
}

// locate resolves the argument as an absolute path, a path relative to the
// working directory, or a file name inside the backup directory.
func (c *BackupRestoreCmd) locate(mgr *backup.Manager) (string, error) {
	if c.BackupFile == "" {
		latest, err := mgr.Latest()
		if err != nil {
			return "", err
		}
		return latest.Path, nil
	}

	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); err != nil {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}
	if _, err := os.Stat(c.BackupFile); err == nil {
		abs, err := filepath.Abs(c.BackupFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve backup path: %w", err)
		}
		return abs, nil
	}
	candidate := filepath.Join(mgr.Dir(), c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.Dir())
}
