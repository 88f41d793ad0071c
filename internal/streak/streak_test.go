package streak

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/routinely/internal/models"
)

func day(d, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func newHabit(target int) models.Habit {
	return models.Habit{ID: 1, Name: "Read", Schedule: "daily", TargetValue: target}
}

func TestIncrementFirstActivityStartsStreak(t *testing.T) {
	now := day(10, 9)
	res := Apply(newHabit(1), Increment{}, now)

	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, 1, res.Habit.CurrentValue)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, 1, res.Habit.BestStreak)
	require.NotNil(t, res.Habit.LastCompletedAt)
	assert.True(t, res.Habit.LastCompletedAt.Equal(now))
	assert.Equal(t, "2026-03-10", res.Habit.ProgressDay)
}

func TestConsecutiveDaysExtendStreak(t *testing.T) {
	h := newHabit(1)
	for i, d := range []int{10, 11, 12} {
		// Late night then early morning still count as adjacent days.
		hour := 23
		if i%2 == 1 {
			hour = 0
		}
		res := Apply(h, Increment{}, day(d, hour))
		require.Equal(t, Completed, res.Outcome)
		assert.Equal(t, i+1, res.Habit.CurrentStreak)
		h = res.Habit
	}
	assert.Equal(t, 3, h.BestStreak)
}

func TestGapResetsStreakToOne(t *testing.T) {
	h := newHabit(1)
	h = Apply(h, Increment{}, day(10, 8)).Habit
	h = Apply(h, Increment{}, day(11, 8)).Habit
	require.Equal(t, 2, h.CurrentStreak)

	res := Apply(h, Increment{}, day(13, 8))
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.BestStreak)
}

func TestToggleOnThenOffIsNetReset(t *testing.T) {
	now := day(10, 12)
	h := newHabit(1)

	on := Apply(h, Toggle{Checked: true}, now)
	require.Equal(t, Completed, on.Outcome)
	require.Equal(t, 1, on.Habit.CurrentValue)

	off := Apply(on.Habit, Toggle{Checked: false}, now.Add(time.Minute))
	assert.Equal(t, Undone, off.Outcome)
	assert.Equal(t, 0, off.Habit.CurrentValue)
	assert.Equal(t, 0, off.Habit.CurrentStreak)
	assert.Nil(t, off.Habit.LastCompletedAt)
}

func TestUndoResetsStreakButKeepsBest(t *testing.T) {
	h := newHabit(1)
	h = Apply(h, Increment{}, day(10, 8)).Habit
	h = Apply(h, Increment{}, day(11, 8)).Habit

	res := Apply(h, Decrement{}, day(11, 9))
	assert.Equal(t, Undone, res.Outcome)
	assert.Equal(t, 0, res.Habit.CurrentStreak)
	assert.Equal(t, 2, res.Habit.BestStreak)
	assert.Nil(t, res.Habit.LastCompletedAt)
}

func TestDirectSetCountsOnceAtTarget(t *testing.T) {
	now := day(10, 7)
	h := newHabit(10)

	five := Apply(h, Set{Value: 5}, now)
	assert.Equal(t, Unchanged, five.Outcome)
	assert.Equal(t, 0, five.Habit.CurrentStreak)
	assert.Nil(t, five.Habit.LastCompletedAt)

	ten := Apply(five.Habit, Set{Value: 10}, now.Add(time.Hour))
	assert.Equal(t, Completed, ten.Outcome)
	assert.Equal(t, 1, ten.Habit.CurrentStreak)

	again := Apply(ten.Habit, Set{Value: 10}, now.Add(2*time.Hour))
	assert.Equal(t, Unchanged, again.Outcome)
	assert.Equal(t, 1, again.Habit.CurrentStreak)
}

func TestSetClampsOutOfRange(t *testing.T) {
	now := day(10, 7)
	res := Apply(newHabit(4), Set{Value: 99}, now)
	assert.Equal(t, 4, res.Habit.CurrentValue)
	assert.Equal(t, Completed, res.Outcome)

	res = Apply(res.Habit, Set{Value: -3}, now)
	assert.Equal(t, 0, res.Habit.CurrentValue)
	assert.Equal(t, Undone, res.Outcome)
}

func TestIncrementCountsOnlyFirstUnit(t *testing.T) {
	now := day(10, 7)
	h := newHabit(3)

	first := Apply(h, Increment{}, now)
	require.Equal(t, Completed, first.Outcome)
	second := Apply(first.Habit, Increment{}, now)
	third := Apply(second.Habit, Increment{}, now)
	capped := Apply(third.Habit, Increment{}, now)

	assert.Equal(t, Unchanged, second.Outcome)
	assert.Equal(t, 3, capped.Habit.CurrentValue)
	assert.Equal(t, 1, capped.Habit.CurrentStreak)

	// Partial undo leaves the streak alone.
	down := Apply(capped.Habit, Decrement{}, now)
	assert.Equal(t, 2, down.Habit.CurrentValue)
	assert.Equal(t, 1, down.Habit.CurrentStreak)
	assert.NotNil(t, down.Habit.LastCompletedAt)
}

func TestIncrementFillingPartialSetCompletes(t *testing.T) {
	now := day(10, 7)
	res := Apply(newHabit(10), Set{Value: 5}, now)
	require.Equal(t, Unchanged, res.Outcome)

	for i := 0; i < 4; i++ {
		res = Apply(res.Habit, Increment{}, now)
		require.Equal(t, Unchanged, res.Outcome, "increment %d", i+1)
	}
	res = Apply(res.Habit, Increment{}, now)
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, 10, res.Habit.CurrentValue)
	assert.Equal(t, 1, res.Habit.CurrentStreak)
	assert.True(t, CompletedOn(res.Habit, now))

	capped := Apply(res.Habit, Increment{}, now)
	assert.Equal(t, Unchanged, capped.Outcome)
	assert.Equal(t, 1, capped.Habit.CurrentStreak)
}

func TestClearingUncompletedProgressKeepsStreak(t *testing.T) {
	h := newHabit(10)
	for _, d := range []int{8, 9, 10} {
		h = Apply(h, Set{Value: 10}, day(d, 8)).Habit
	}
	require.Equal(t, 3, h.CurrentStreak)
	yesterday := *h.LastCompletedAt

	partial := Apply(h, Set{Value: 4}, day(11, 8))
	require.Equal(t, Unchanged, partial.Outcome)
	cleared := Apply(partial.Habit, Set{Value: 0}, day(11, 9))

	assert.Equal(t, Unchanged, cleared.Outcome)
	assert.Equal(t, 0, cleared.Habit.CurrentValue)
	assert.Equal(t, 3, cleared.Habit.CurrentStreak)
	require.NotNil(t, cleared.Habit.LastCompletedAt)
	assert.True(t, cleared.Habit.LastCompletedAt.Equal(yesterday))

	// Finishing later the same day still extends the streak.
	done := Apply(cleared.Habit, Set{Value: 10}, day(11, 20))
	assert.Equal(t, Completed, done.Outcome)
	assert.Equal(t, 4, done.Habit.CurrentStreak)
}

func TestFullButUncompletedHabitCompletesOnNextMutation(t *testing.T) {
	now := day(10, 7)
	h := Apply(newHabit(10), Set{Value: 4}, now).Habit
	// A lowered target leaves progress at the new target without a completion.
	h = h.WithDraft(models.HabitDraft{Name: h.Name, Schedule: h.Schedule, TargetValue: 4})
	require.Equal(t, 4, h.CurrentValue)
	require.False(t, CompletedOn(h, now))

	for _, m := range []Mutation{Increment{}, Set{Value: 4}, Toggle{Checked: true}} {
		res := Apply(h, m, now)
		assert.Equal(t, Completed, res.Outcome, "%s", m)
		assert.Equal(t, 1, res.Habit.CurrentStreak, "%s", m)
	}
}

func TestDecrementAtZeroIsNoop(t *testing.T) {
	res := Apply(newHabit(1), Decrement{}, day(10, 7))
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, 0, res.Habit.CurrentValue)
}

func TestRolloverClearsYesterdaysProgress(t *testing.T) {
	h := newHabit(5)
	h = Apply(h, Set{Value: 3}, day(10, 20)).Habit
	require.Equal(t, 3, h.CurrentValue)

	h = Rollover(h, day(11, 6))
	assert.Equal(t, 0, h.CurrentValue)
	assert.Equal(t, "2026-03-11", h.ProgressDay)
}

func TestRolloverKeepsStreakFields(t *testing.T) {
	h := Apply(newHabit(1), Increment{}, day(10, 20)).Habit
	rolled := Rollover(h, day(12, 6))
	assert.Equal(t, h.CurrentStreak, rolled.CurrentStreak)
	assert.Equal(t, h.LastCompletedAt, rolled.LastCompletedAt)
}

func TestCalendarDaysFollowLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 and 00:30 the next morning in Tokyo are one hour apart but on
	// adjacent calendar days.
	first := time.Date(2026, 3, 10, 23, 30, 0, 0, tokyo)
	second := time.Date(2026, 3, 11, 0, 30, 0, 0, tokyo)

	h := Apply(newHabit(1), Increment{}, first).Habit
	res := Apply(h, Increment{}, second)
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, 2, res.Habit.CurrentStreak)
}

func TestInvariantsHoldUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		target := 1 + rng.Intn(6)
		h := newHabit(target)
		now := day(1, 6)
		for step := 0; step < 200; step++ {
			now = now.Add(time.Duration(rng.Intn(14)) * time.Hour)
			var m Mutation
			switch rng.Intn(4) {
			case 0:
				m = Increment{}
			case 1:
				m = Decrement{}
			case 2:
				m = Set{Value: rng.Intn(target+4) - 2}
			default:
				m = Toggle{Checked: rng.Intn(2) == 0}
			}
			h = Apply(h, m, now).Habit

			require.GreaterOrEqual(t, h.CurrentValue, 0)
			require.LessOrEqual(t, h.CurrentValue, target)
			require.GreaterOrEqual(t, h.CurrentStreak, 0)
			require.LessOrEqual(t, h.CurrentStreak, h.BestStreak)
			if h.LastCompletedAt != nil && CompletedOn(h, now) {
				require.Positive(t, h.CurrentValue, "completed today with no progress after %s", m)
			}
		}
	}
}

func TestMutationString(t *testing.T) {
	assert.Equal(t, "set(4)", Set{Value: 4}.String())
	assert.Equal(t, "toggle(true)", Toggle{Checked: true}.String())
	assert.Equal(t, "undone", Undone.String())
}
