package system

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
)

// ResetCmd deletes every habit and completion record. Settings are kept.
type ResetCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}

	count := len(store.Habits())
	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Delete all %d habit(s) and their history?", count))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup(ctx.Ctx())
	if err := store.ClearAll(ctx.Ctx()); err != nil {
		return err
	}
	fmt.Printf("Deleted %d habit(s).\n", count)
	return nil
}
