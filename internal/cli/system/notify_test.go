package system

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/streak"
)

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return r.err
}

func notifyContext(t *testing.T, at time.Time) *cli.Context {
	t.Helper()
	ctx, cleanup := setupTestDoctorDB(t)
	t.Cleanup(cleanup)
	ctx.Clock = func() time.Time { return at }
	ctx.Timezone = "UTC"
	return ctx
}

func createHabit(t *testing.T, ctx *cli.Context, draft models.HabitDraft) models.Habit {
	t.Helper()
	store, err := ctx.Habits(ctx.Ctx())
	require.NoError(t, err)
	h, err := store.Create(ctx.Ctx(), draft)
	require.NoError(t, err)
	return h
}

func TestNotifyCmd_SendsDueReminders(t *testing.T) {
	// Wednesday 07:30.
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))

	createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})
	createHabit(t, ctx, models.HabitDraft{Name: "Hike", Schedule: "6,7", TargetValue: 1, NotificationTime: "07:30"})
	createHabit(t, ctx, models.HabitDraft{Name: "Read", Schedule: "daily", TargetValue: 1, NotificationTime: "21:00"})
	done := createHabit(t, ctx, models.HabitDraft{Name: "Water", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})

	store, err := ctx.Habits(ctx.Ctx())
	require.NoError(t, err)
	_, err = store.Apply(ctx.Ctx(), done.ID, streak.Toggle{Checked: true})
	require.NoError(t, err)

	n := &recordingNotifier{}
	require.NoError(t, (&NotifyCmd{Notifier: n}).Run(ctx))
	assert.Equal(t, []string{"Time for Stretch"}, n.texts)
}

func TestNotifyCmd_RespectsDisabledSetting(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})

	settings, err := ctx.Settings(ctx.Ctx())
	require.NoError(t, err)
	settings.NotificationsEnabled = false
	require.NoError(t, ctx.SaveSettings(ctx.Ctx(), settings))

	n := &recordingNotifier{}
	require.NoError(t, (&NotifyCmd{Notifier: n}).Run(ctx))
	assert.Empty(t, n.texts)
}

func TestNotifyCmd_DryRunDoesNotDeliver(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})

	n := &recordingNotifier{}
	require.NoError(t, (&NotifyCmd{DryRun: true, Notifier: n}).Run(ctx))
	assert.Empty(t, n.texts)
}

func TestNotifyCmd_DeliveryErrorsDoNotAbort(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))
	createHabit(t, ctx, models.HabitDraft{Name: "Stretch", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})
	createHabit(t, ctx, models.HabitDraft{Name: "Floss", Schedule: "daily", TargetValue: 1, NotificationTime: "07:30"})

	n := &recordingNotifier{err: errors.New("tray down")}
	require.NoError(t, (&NotifyCmd{Notifier: n}).Run(ctx))
	assert.Len(t, n.texts, 2)
}

func TestNotifyCmd_Test(t *testing.T) {
	ctx := notifyContext(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC))

	n := &recordingNotifier{}
	require.NoError(t, (&NotifyCmd{Test: true, Notifier: n}).Run(ctx))
	assert.Len(t, n.texts, 1)

	n.err = errors.New("tray down")
	assert.Error(t, (&NotifyCmd{Test: true, Notifier: n}).Run(ctx))
}
