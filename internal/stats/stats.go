// Package stats computes completion ratios, trends and calendar state from
// the completion log. All functions are pure; days are calendar days in the
// location of the times passed in.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/utils"
)

// DayRatio is the share of habits completed on one day.
type DayRatio struct {
	Day       time.Time
	Completed int
	Ratio     float64
}

// CalendarDay is one cell of the week strip.
type CalendarDay struct {
	Day       time.Time
	Completed bool
	Selected  bool
}

// HabitDay is a habit's completion state on a selected day.
type HabitDay struct {
	Habit     models.Habit
	Completed bool
}

// CompletionPercentage returns the share of days in [start, end] with at
// least one completion, as a rounded percentage. Inverted ranges give 0.
func CompletionPercentage(records []models.CompletionRecord, start, end time.Time) int {
	span := utils.DaysBetween(start, end, start.Location()) + 1
	if span <= 0 {
		return 0
	}
	from, to := utils.DayKey(start), utils.DayKey(end.In(start.Location()))

	days := make(map[string]bool)
	for _, r := range records {
		if r.Active() && r.Day >= from && r.Day <= to {
			days[r.Day] = true
		}
	}
	return int(math.Round(float64(len(days)) * 100 / float64(span)))
}

// CompletedByDay counts distinct habits completed on each day.
func CompletedByDay(records []models.CompletionRecord) map[string]int {
	seen := make(map[string]map[int64]bool)
	for _, r := range records {
		if !r.Active() {
			continue
		}
		if seen[r.Day] == nil {
			seen[r.Day] = make(map[int64]bool)
		}
		seen[r.Day][r.HabitID] = true
	}
	out := make(map[string]int, len(seen))
	for day, habits := range seen {
		out[day] = len(habits)
	}
	return out
}

// WeeklyTrend returns seven ratios, oldest first, ending at ref. Each is the
// day's completed count over total, or 0 when total is 0.
func WeeklyTrend(completedByDay map[string]int, total int, ref time.Time) []DayRatio {
	start := utils.AddDays(utils.StartOfDay(ref), -(constants.TrendDays - 1))
	out := make([]DayRatio, constants.TrendDays)
	for i := range out {
		day := utils.AddDays(start, i)
		n := completedByDay[utils.DayKey(day)]
		ratio := 0.0
		if total > 0 {
			ratio = float64(n) / float64(total)
		}
		out[i] = DayRatio{Day: day, Completed: n, Ratio: ratio}
	}
	return out
}

// CalendarWeek returns Monday through Sunday of the week containing
// selected.
func CalendarWeek(records []models.CompletionRecord, selected time.Time) []CalendarDay {
	completed := make(map[string]bool)
	for _, r := range records {
		if r.Active() {
			completed[r.Day] = true
		}
	}

	monday := utils.StartOfWeek(selected)
	selectedKey := utils.DayKey(selected)
	out := make([]CalendarDay, constants.DaysInWeek)
	for i := range out {
		day := utils.AddDays(monday, i)
		key := utils.DayKey(day)
		out[i] = CalendarDay{Day: day, Completed: completed[key], Selected: key == selectedKey}
	}
	return out
}

// BestStreakOverall is the highest best streak, or 0 without habits.
func BestStreakOverall(habits []models.Habit) int {
	best := 0
	for _, h := range habits {
		best = max(best, h.BestStreak)
	}
	return best
}

// MonthlyPercentage is CompletionPercentage from the first of ref's month
// through ref.
func MonthlyPercentage(records []models.CompletionRecord, ref time.Time) int {
	return CompletionPercentage(records, utils.StartOfMonth(ref), ref)
}

// Leaderboard returns up to n habits by best streak, then current streak,
// then id.
func Leaderboard(habits []models.Habit, n int) []models.Habit {
	out := append([]models.Habit(nil), habits...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BestStreak != b.BestStreak {
			return a.BestStreak > b.BestStreak
		}
		if a.CurrentStreak != b.CurrentStreak {
			return a.CurrentStreak > b.CurrentStreak
		}
		return a.ID < b.ID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DayStatus lists the habits due on day, in id order, with whether each was
// completed that day. Habits created after day are left out.
func DayStatus(habits []models.Habit, records []models.CompletionRecord, day time.Time) []HabitDay {
	key := utils.DayKey(day)
	done := make(map[int64]bool)
	for _, r := range records {
		if r.Active() && r.Day == key {
			done[r.HabitID] = true
		}
	}

	var out []HabitDay
	for _, h := range habits {
		if !schedule.IsDueAt(h.Schedule, day) {
			continue
		}
		if !h.CreatedAt.IsZero() && utils.DayKey(h.CreatedAt.In(day.Location())) > key {
			continue
		}
		out = append(out, HabitDay{Habit: h, Completed: done[h.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Habit.ID < out[j].Habit.ID })
	return out
}
