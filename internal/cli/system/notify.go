package system

import (
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/notifier"
	"github.com/julianstephens/routinely/internal/reminder"
)

// NotifyCmd sends the reminders due in the current minute. It is meant to be
// run once a minute from an OS scheduler when the remind process is not used.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
	Test   bool `help:"Send a single test notification and exit."`

	Notifier reminder.Notifier `kong:"-"`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	n := c.Notifier
	if n == nil {
		n = notifier.New()
	}

	if c.Test {
		msg := "routinely notifications are working"
		if c.DryRun {
			fmt.Println("[DryRun] " + msg)
			return nil
		}
		return n.Notify(ctx.Ctx(), msg)
	}

	settings, err := ctx.Settings(ctx.Ctx())
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	now, err := ctx.Now(ctx.Ctx())
	if err != nil {
		return err
	}

	due := reminder.Due(store.Habits(), now)
	if len(due) == 0 && c.DryRun {
		fmt.Println("No reminders due.")
	}
	for _, r := range due {
		msg := reminder.Message(r)
		if c.DryRun {
			fmt.Println("[DryRun] " + msg)
			continue
		}
		if err := n.Notify(ctx.Ctx(), msg); err != nil {
			// Keep going so one failure does not swallow the rest.
			logger.Warn("Failed to send notification", "habit_id", r.HabitID, "error", err)
			fmt.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}
