// Package streak computes how progress mutations change a habit's counters.
//
// Everything here is pure: callers pass the current time (in the configured
// location) and persist the returned habit themselves.
package streak

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/utils"
)

// Mutation is one of Increment, Decrement, Set or Toggle.
type Mutation interface {
	isMutation()
	fmt.Stringer
}

// Increment raises progress by one unit, capped at the target.
type Increment struct{}

// Decrement lowers progress by one unit, floored at zero.
type Decrement struct{}

// Set assigns progress directly; the value is clamped to [0, target].
type Set struct {
	Value int
}

// Toggle is the binary path: checked fills the target, unchecked clears it.
type Toggle struct {
	Checked bool
}

func (Increment) isMutation() {}
func (Decrement) isMutation() {}
func (Set) isMutation()       {}
func (Toggle) isMutation()    {}

func (Increment) String() string { return "increment" }
func (Decrement) String() string { return "decrement" }
func (s Set) String() string     { return fmt.Sprintf("set(%d)", s.Value) }
func (t Toggle) String() string  { return fmt.Sprintf("toggle(%t)", t.Checked) }

// Outcome describes what a mutation did to the day's completion.
type Outcome int

const (
	// Unchanged means the day's completion state did not change.
	Unchanged Outcome = iota
	// Completed means the mutation recorded the first completion of the day.
	Completed
	// Undone means progress fell back to zero and the completion was cleared.
	Undone
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Undone:
		return "undone"
	default:
		return "unchanged"
	}
}

// Result is the habit after a mutation plus the completion outcome.
type Result struct {
	Habit   models.Habit
	Outcome Outcome
}

// Apply returns the habit after m at time now. The day is taken from now's
// location, which must be the configured timezone.
func Apply(h models.Habit, m Mutation, now time.Time) Result {
	h = Rollover(h, now)
	target := max(h.TargetValue, 1)

	switch m := m.(type) {
	case Increment:
		return transition(h, min(h.CurrentValue+1, target), firstOrFilled, now)
	case Decrement:
		return transition(h, max(h.CurrentValue-1, 0), firstActivity, now)
	case Set:
		return transition(h, clamp(m.Value, 0, target), reachedTarget, now)
	case Toggle:
		if m.Checked {
			return transition(h, target, reachedTarget, now)
		}
		return transition(h, 0, reachedTarget, now)
	}
	return Result{Habit: h}
}

// completionRule decides whether a rise in progress is the day's completion.
type completionRule func(prev, next, target int) bool

// firstActivity counts the step from no progress to some progress.
func firstActivity(prev, next, _ int) bool {
	return prev == 0 && next > 0
}

// reachedTarget counts a mutation that leaves progress at the target. An
// edit that lowered the target can leave a habit full but not yet completed.
func reachedTarget(_, next, target int) bool {
	return next == target
}

// firstOrFilled counts the first unit, or the unit that fills a target a
// direct Set left partly done.
func firstOrFilled(prev, next, target int) bool {
	return firstActivity(prev, next, target) || reachedTarget(prev, next, target)
}

func transition(h models.Habit, next int, completes completionRule, now time.Time) Result {
	prev := h.CurrentValue
	h.CurrentValue = next
	doneToday := CompletedOn(h, now)

	switch {
	case prev > 0 && next == 0:
		// Clearing progress that never completed the day keeps earlier streaks.
		if !doneToday {
			return Result{Habit: h}
		}
		h.CurrentStreak = 0
		h.LastCompletedAt = nil
		return Result{Habit: h, Outcome: Undone}

	case !doneToday && completes(prev, next, max(h.TargetValue, 1)):
		if h.LastCompletedAt != nil && utils.IsPreviousDay(*h.LastCompletedAt, now, now.Location()) {
			h.CurrentStreak++
		} else {
			h.CurrentStreak = 1
		}
		h.BestStreak = max(h.BestStreak, h.CurrentStreak)
		completed := now
		h.LastCompletedAt = &completed
		return Result{Habit: h, Outcome: Completed}
	}
	return Result{Habit: h}
}

// Rollover starts a new day's cycle: progress recorded for an earlier day is
// reset to zero. Streak fields are left alone.
func Rollover(h models.Habit, now time.Time) models.Habit {
	today := utils.DayKey(now)
	if h.ProgressDay == today {
		return h
	}
	if h.ProgressDay != "" || !CompletedOn(h, now) {
		h.CurrentValue = 0
	}
	h.ProgressDay = today
	return h
}

// CompletedOn reports whether the habit's last completion falls on day's
// calendar date in day's location.
func CompletedOn(h models.Habit, day time.Time) bool {
	return h.LastCompletedAt != nil && utils.SameDay(*h.LastCompletedAt, day, day.Location())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
