package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/notifier"
	"github.com/julianstephens/routinely/internal/reminder"
)

// RemindCmd keeps reminders scheduled in-process until interrupted. It also
// starts each new day at midnight and picks up writes made by other
// routinely processes.
type RemindCmd struct {
	Notifier reminder.Notifier `kong:"-"`
}

type reminderDaemon struct {
	cron  *reminder.Cron
	store *habits.Store
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	d, err := c.setup(ctx)
	if err != nil {
		return err
	}

	d.cron.Start()
	defer func() {
		<-d.cron.Stop().Done()
		d.store.Close()
	}()

	fmt.Printf("Watching %d reminder(s). Press Ctrl+C to stop.\n", len(d.cron.Reminders()))
	return d.serve(ctx.Ctx())
}

// setup builds the cron scheduler, routes the habit store's reminder effects
// into it and schedules what is already stored.
func (c *RemindCmd) setup(ctx *cli.Context) (*reminderDaemon, error) {
	if err := ctx.Store.Load(ctx.Ctx()); err != nil {
		return nil, err
	}
	loc, err := ctx.Location(ctx.Ctx())
	if err != nil {
		return nil, err
	}

	n := c.Notifier
	if n == nil {
		n = notifier.New()
	}

	d := &reminderDaemon{}
	d.cron = reminder.NewCron(n, loc,
		reminder.WithEnabled(func() bool {
			s, err := ctx.Store.GetSettings(context.Background())
			if err != nil {
				logger.Warn("Could not read settings, delivering anyway", "error", err)
				return true
			}
			return s.NotificationsEnabled
		}),
		reminder.WithPending(func(id int64) bool {
			h, ok := d.store.Habit(id)
			return ok && reminder.Pending(h, d.store.Now())
		}),
	)

	ctx.Reminders = d.cron
	d.store, err = ctx.Habits(ctx.Ctx())
	if err != nil {
		return nil, err
	}
	if err := d.cron.Reconcile(ctx.Ctx(), d.store.Habits()); err != nil {
		return nil, err
	}

	if err := d.cron.AddJob(constants.RolloverCronSpec, func() {
		if err := d.store.BeginDay(context.Background()); err != nil {
			logger.Error("Day rollover failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule rollover: %w", err)
	}
	if err := d.cron.AddJob(constants.RefreshCronSpec, func() {
		if err := d.store.Refresh(context.Background()); err != nil {
			logger.Warn("Refresh failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule refresh: %w", err)
	}
	return d, nil
}

// serve reconciles reminders with every published habit list until ctx is
// done.
func (d *reminderDaemon) serve(ctx context.Context) error {
	updates, cancel := d.store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder process stopping")
			return nil
		case hs, ok := <-updates:
			if !ok {
				return nil
			}
			if err := d.cron.Reconcile(ctx, hs); err != nil {
				logger.Warn("Reminder reconcile failed", "error", err)
			}
		}
	}
}
