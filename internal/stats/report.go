package stats

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/feed"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/utils"
)

// Report is everything the statistics screen shows for a selected date.
type Report struct {
	Selected          time.Time
	TotalHabits       int
	WeeklyPercentage  int
	MonthlyPercentage int
	BestStreak        int
	Trend             []DayRatio
	Week              []CalendarDay
	Day               []HabitDay
	Leaderboard       []models.Habit
}

// Build computes a Report for selected.
func Build(habits []models.Habit, records []models.CompletionRecord, selected time.Time) Report {
	weekStart := utils.AddDays(utils.StartOfDay(selected), -(constants.TrendDays - 1))
	return Report{
		Selected:          selected,
		TotalHabits:       len(habits),
		WeeklyPercentage:  CompletionPercentage(records, weekStart, selected),
		MonthlyPercentage: MonthlyPercentage(records, selected),
		BestStreak:        BestStreakOverall(habits),
		Trend:             WeeklyTrend(CompletedByDay(records), len(habits), selected),
		Week:              CalendarWeek(records, selected),
		Day:               DayStatus(habits, records, selected),
		Leaderboard:       Leaderboard(habits, constants.LeaderboardSize),
	}
}

// Watcher rebuilds the Report whenever habits, completions or the selected
// date change.
type Watcher struct {
	mu        sync.Mutex
	habits    []models.Habit
	records   []models.CompletionRecord
	gotHabits bool
	gotRecs   bool
	selected  time.Time
	out       *feed.Feed[Report]
}

func NewWatcher(selected time.Time) *Watcher {
	return &Watcher{selected: selected, out: feed.New[Report]()}
}

// Run consumes both streams until ctx is done or either channel closes,
// then ends every subscription.
func (w *Watcher) Run(ctx context.Context, habits <-chan []models.Habit, records <-chan []models.CompletionRecord) {
	defer w.out.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-habits:
			if !ok {
				return
			}
			w.SetHabits(snap)
		case snap, ok := <-records:
			if !ok {
				return
			}
			w.SetCompletions(snap)
		}
	}
}

func (w *Watcher) SetHabits(habits []models.Habit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.habits, w.gotHabits = habits, true
	w.publish()
}

func (w *Watcher) SetCompletions(records []models.CompletionRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records, w.gotRecs = records, true
	w.publish()
}

// Select changes the statistics date.
func (w *Watcher) Select(day time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = day
	w.publish()
}

// Selected returns the current statistics date.
func (w *Watcher) Selected() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

func (w *Watcher) Subscribe() (<-chan Report, func()) {
	return w.out.Subscribe()
}

func (w *Watcher) Current() (Report, bool) {
	return w.out.Latest()
}

// publish needs w.mu held and waits for both streams.
func (w *Watcher) publish() {
	if !w.gotHabits || !w.gotRecs {
		return
	}
	w.out.Publish(Build(w.habits, w.records, w.selected))
}

// Markdown renders r for terminal display.
func Markdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Statistics for %s\n\n", r.Selected.Format("Mon, Jan 2 2006"))
	fmt.Fprintf(&b, "| Habits | Last 7 days | This month | Best streak |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d%% | %d%% | %d |\n\n", r.TotalHabits, r.WeeklyPercentage, r.MonthlyPercentage, r.BestStreak)

	b.WriteString("## Week\n\n")
	for _, d := range r.Week {
		mark := "·"
		if d.Completed {
			mark = "✓"
		}
		label := d.Day.Format("Mon 2")
		if d.Selected {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "%s %s  ", label, mark)
	}
	b.WriteString("\n\n## Trend\n\n")
	for _, d := range r.Trend {
		fmt.Fprintf(&b, "- %s `%s` %d\n", d.Day.Format("Mon"), bar(d.Ratio, 20), d.Completed)
	}

	b.WriteString("\n## Selected day\n\n")
	if len(r.Day) == 0 {
		b.WriteString("_Nothing scheduled._\n")
	}
	for _, hd := range r.Day {
		box := "[ ]"
		if hd.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "- %s %s (%s)\n", box, hd.Habit.Name, schedule.Describe(hd.Habit.Schedule))
	}

	if len(r.Leaderboard) > 0 {
		b.WriteString("\n## Longest streaks\n\n")
		for i, h := range r.Leaderboard {
			fmt.Fprintf(&b, "%d. %s: best %d, current %d\n", i+1, h.Name, h.BestStreak, h.CurrentStreak)
		}
	}
	return b.String()
}

func bar(ratio float64, width int) string {
	n := int(ratio*float64(width) + 0.5)
	n = min(max(n, 0), width)
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
