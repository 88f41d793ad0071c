package reminder

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
)

const deliveryTimeout = 10 * time.Second

type scheduled struct {
	id       cron.EntryID
	reminder Reminder
}

// Cron fires reminders from an in-process cron scheduler running in the
// configured location.
type Cron struct {
	mu       sync.Mutex
	cron     *cron.Cron
	notifier Notifier
	enabled  func() bool
	pending  func(habitID int64) bool
	entries  map[int64]scheduled
}

// CronOption configures a Cron.
type CronOption func(*Cron)

// WithEnabled gates delivery; reminders stay scheduled while fn returns false.
func WithEnabled(fn func() bool) CronOption {
	return func(c *Cron) { c.enabled = fn }
}

// WithPending drops a firing reminder when fn reports the habit needs no
// nudge, for example because it is already done or not due today.
func WithPending(fn func(habitID int64) bool) CronOption {
	return func(c *Cron) { c.pending = fn }
}

func NewCron(notifier Notifier, loc *time.Location, opts ...CronOption) *Cron {
	if loc == nil {
		loc = time.Local
	}
	c := &Cron{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
		notifier: notifier,
		entries:  make(map[int64]scheduled),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the scheduler in its own goroutine.
func (c *Cron) Start() {
	c.cron.Start()
}

// Stop halts the scheduler; the returned context is done once running jobs
// finish.
func (c *Cron) Stop() context.Context {
	return c.cron.Stop()
}

// AddJob registers a non-reminder job (rollover, refresh) on the same clock.
func (c *Cron) AddJob(spec string, fn func()) error {
	_, err := c.cron.AddFunc(spec, fn)
	return err
}

func (c *Cron) Schedule(_ context.Context, r Reminder) error {
	spec, err := Spec(r.TimeOfDay)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[r.HabitID]; ok {
		if cur.reminder == r {
			return nil
		}
		c.cron.Remove(cur.id)
	}

	id, err := c.cron.AddFunc(spec, func() { c.fire(r) })
	if err != nil {
		delete(c.entries, r.HabitID)
		return fmt.Errorf("failed to schedule reminder for habit %d: %w", r.HabitID, err)
	}
	c.entries[r.HabitID] = scheduled{id: id, reminder: r}
	logger.Info("Reminder scheduled", "habit_id", r.HabitID, "time", r.TimeOfDay)
	return nil
}

func (c *Cron) Cancel(_ context.Context, habitID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[habitID]; ok {
		c.cron.Remove(cur.id)
		delete(c.entries, habitID)
		logger.Info("Reminder cancelled", "habit_id", habitID)
	}
	return nil
}

// Reconcile makes the scheduled set match habits: reminders are added or
// moved for habits with a notification time and dropped for every other id.
func (c *Cron) Reconcile(ctx context.Context, habits []models.Habit) error {
	want := make(map[int64]bool, len(habits))
	for _, h := range habits {
		if _, ok := ForHabit(h); ok {
			want[h.ID] = true
		}
		if err := Sync(ctx, c, h); err != nil {
			return err
		}
	}

	c.mu.Lock()
	var stale []int64
	for id := range c.entries {
		if !want[id] {
			stale = append(stale, id)
		}
	}
	c.mu.Unlock()

	for _, id := range stale {
		if err := c.Cancel(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Reminders lists what is scheduled, ordered by habit id.
func (c *Cron) Reminders() []Reminder {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Reminder, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.reminder)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitID < out[j].HabitID })
	return out
}

func (c *Cron) fire(r Reminder) {
	if c.enabled != nil && !c.enabled() {
		logger.Debug("Reminder skipped, notifications disabled", "habit_id", r.HabitID)
		return
	}
	if c.pending != nil && !c.pending(r.HabitID) {
		logger.Debug("Reminder skipped, nothing pending", "habit_id", r.HabitID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	if err := c.notifier.Notify(ctx, Message(r)); err != nil {
		logger.Warn("Reminder delivery failed", "habit_id", r.HabitID, "error", err)
	}
}

// Spec converts HH:MM into a daily five-field cron spec.
func Spec(timeOfDay string) (string, error) {
	hour, minute, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// NextRun returns when r fires next after t, in t's location. Times already
// past today roll over to tomorrow.
func NextRun(r Reminder, after time.Time) (time.Time, error) {
	spec, err := Spec(r.TimeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}

// cronLogger routes the scheduler's own messages into the app log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
