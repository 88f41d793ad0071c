package system

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return fmt.Errorf("migrate command is not supported for this storage backend")
	}

	count, err := m.Migrate(ctx.Ctx(), func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}
