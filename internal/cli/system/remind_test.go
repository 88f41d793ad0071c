package system

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/reminder"
	"github.com/julianstephens/routinely/internal/streak"
)

func TestRemindCmd_SchedulesStoredReminders(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC))
	createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})
	createHabit(t, ctx, models.HabitDraft{Name: "Read", Schedule: "daily", TargetValue: 1})

	// Rebuild the habit store so setup wires it to the cron scheduler.
	ctx2 := notifyContext(t, time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC))
	ctx2.Store = ctx.Store

	d, err := (&RemindCmd{Notifier: &recordingNotifier{}}).setup(ctx2)
	require.NoError(t, err)
	t.Cleanup(d.store.Close)

	got := d.cron.Reminders()
	require.Len(t, got, 1)
	assert.Equal(t, "Stretch", got[0].Name)
	assert.Same(t, d.cron, ctx2.Reminders)
}

func TestRemindCmd_ReconcilesExternalChanges(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC))
	d, err := (&RemindCmd{Notifier: &recordingNotifier{}}).setup(ctx)
	require.NoError(t, err)
	t.Cleanup(d.store.Close)
	assert.Empty(t, d.cron.Reminders())

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.serve(runCtx) }()

	// Another process adds a habit with a reminder.
	_, err = ctx.Store.InsertHabit(context.Background(), models.Habit{
		Name: "Walk", Schedule: "daily", TargetValue: 1, NotificationTime: "18:00",
		ProgressDay: "2026-03-11", CreatedAt: time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, d.store.Refresh(context.Background()))

	assert.Eventually(t, func() bool { return len(d.cron.Reminders()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestRemindCmd_PendingSkipsCompletedHabits(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	n := &recordingNotifier{}
	d, err := (&RemindCmd{Notifier: n}).setup(ctx)
	require.NoError(t, err)
	t.Cleanup(d.store.Close)

	h, err := d.store.Create(context.Background(), models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})
	require.NoError(t, err)
	require.Len(t, d.cron.Reminders(), 1)

	_, err = d.store.Apply(context.Background(), h.ID, streak.Toggle{Checked: true})
	require.NoError(t, err)

	got, ok := d.store.Habit(h.ID)
	require.True(t, ok)
	assert.False(t, reminder.Pending(got, d.store.Now()))
}
