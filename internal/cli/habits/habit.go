package habits

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/routinely/internal/cli"
	habitstore "github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/streak"
	"github.com/julianstephens/routinely/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit's name, schedule, target or reminder."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	List   HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	Today  HabitTodayCmd  `cmd:"" help:"Show habits due today."`
	Inc    HabitIncCmd    `cmd:"" help:"Add one unit of progress."`
	Dec    HabitDecCmd    `cmd:"" help:"Remove one unit of progress."`
	Set    HabitSetCmd    `cmd:"" help:"Set today's progress directly."`
	Done   HabitDoneCmd   `cmd:"" help:"Mark a habit complete for today."`
	Undo   HabitUndoCmd   `cmd:"" help:"Clear today's progress."`
	Record HabitRecordCmd `cmd:"" help:"Add a past day to a habit's history without touching its streak."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Days     string `help:"Days the habit is due: daily, weekdays, weekend or a list like mon,wed,fri." default:"daily"`
	Target   int    `help:"Units per day; 1 makes a done/not-done habit." default:"1"`
	Remind   string `help:"Daily reminder time (HH:MM)."`
	Category string `help:"Category used for filtering."`
	Icon     string `help:"Icon shown next to the name."`
	Color    string `help:"Display color."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}

	days, err := schedule.ParseDays(c.Days)
	if err != nil {
		return &models.InvalidHabitError{Field: "schedule", Reason: err.Error()}
	}

	habit, err := store.Create(ctx.Ctx(), models.HabitDraft{
		Name:             c.Name,
		Icon:             c.Icon,
		Color:            c.Color,
		Category:         c.Category,
		Schedule:         schedule.Encode(days),
		TargetValue:      c.Target,
		NotificationTime: c.Remind,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit #%d: %s (%s)\n", habit.ID, habit.Name, schedule.Describe(habit.Schedule))
	return nil
}

type HabitEditCmd struct {
	Habit    string  `arg:"" help:"Habit id or name."`
	Name     *string `help:"New name."`
	Days     *string `help:"Days the habit is due."`
	Target   *int    `help:"Units per day."`
	Remind   *string `help:"Daily reminder time (HH:MM); empty clears it."`
	Category *string `help:"Category."`
	Icon     *string `help:"Icon."`
	Color    *string `help:"Display color."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	habit, err := resolve(store, c.Habit)
	if err != nil {
		return err
	}

	draft := habit.Draft()
	updated := false
	if c.Name != nil {
		draft.Name = *c.Name
		updated = true
	}
	if c.Days != nil {
		days, err := schedule.ParseDays(*c.Days)
		if err != nil {
			return &models.InvalidHabitError{Field: "schedule", Reason: err.Error()}
		}
		draft.Schedule = schedule.Encode(days)
		updated = true
	}
	if c.Target != nil {
		draft.TargetValue = *c.Target
		updated = true
	}
	if c.Remind != nil {
		draft.NotificationTime = strings.TrimSpace(*c.Remind)
		updated = true
	}
	if c.Category != nil {
		draft.Category = *c.Category
		updated = true
	}
	if c.Icon != nil {
		draft.Icon = *c.Icon
		updated = true
	}
	if c.Color != nil {
		draft.Color = *c.Color
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified.")
		return nil
	}
	if _, err := store.Update(ctx.Ctx(), habit.ID, draft); err != nil {
		return err
	}
	fmt.Printf("Updated habit #%d\n", habit.ID)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	habit, err := resolve(store, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := cli.Confirm(fmt.Sprintf("Delete %q and its whole history?", habit.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := store.Delete(ctx.Ctx(), habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct {
	Filter   string `help:"today, all or uncompleted (default from settings)."`
	Sort     string `help:"date, name or streak (default from settings)."`
	Category string `help:"Only show this category."`
	Desc     bool   `help:"Sort names Z to A."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	opts, err := c.options(ctx)
	if err != nil {
		return err
	}
	return printProjection(ctx, opts)
}

func (c *HabitListCmd) options(ctx *cli.Context) (projection.Options, error) {
	settings, err := ctx.Settings(ctx.Ctx())
	if err != nil {
		return projection.Options{}, err
	}
	opts := projection.FromSettings(settings)
	if c.Filter != "" {
		if opts.Filter, err = projection.ParseFilter(c.Filter); err != nil {
			return opts, err
		}
	} else {
		opts.Filter = projection.All
	}
	if c.Sort != "" {
		if opts.Sort, err = projection.ParseSort(c.Sort); err != nil {
			return opts, err
		}
	}
	if c.Category != "" {
		opts.Category = c.Category
	}
	if c.Desc {
		opts.NameAscending = false
	}
	return opts, nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings(ctx.Ctx())
	if err != nil {
		return err
	}
	opts := projection.FromSettings(settings)
	opts.Filter = projection.Today
	return printProjection(ctx, opts)
}

func printProjection(ctx *cli.Context, opts projection.Options) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	now := store.Now()
	all := store.Habits()
	list := projection.Project(all, opts, now)

	if len(list) == 0 {
		if len(all) == 0 {
			fmt.Println("No habits found. Add one with 'routinely habit add'.")
		} else {
			fmt.Printf("No habits match (filter: %s).\n", opts.Filter)
		}
		return nil
	}

	done := 0
	for _, h := range list {
		completed := streak.CompletedOn(h, now)
		if completed {
			done++
		}
		fmt.Println(formatLine(h, completed, now))
	}
	fmt.Printf("\nCompleted today: %d/%d\n", done, len(list))
	return nil
}

func formatLine(h models.Habit, completed bool, now time.Time) string {
	box := "[ ]"
	if completed {
		box = "[x]"
	}
	name := h.Name
	if h.Icon != "" {
		name = h.Icon + " " + name
	}
	line := fmt.Sprintf("%s #%-3d %-24s %-14s", box, h.ID, name, schedule.Describe(h.Schedule))
	if !h.IsBinary() {
		line += fmt.Sprintf(" %d/%d", h.CurrentValue, h.TargetValue)
	}
	if h.CurrentStreak > 0 || h.BestStreak > 0 {
		line += fmt.Sprintf("  streak %d (best %d)", h.CurrentStreak, h.BestStreak)
	}
	if h.LastCompletedAt != nil && !completed {
		line += "  last " + humanize.RelTime(*h.LastCompletedAt, now, "ago", "from now")
	}
	if h.Category != "" {
		line += "  [" + h.Category + "]"
	}
	if h.HasReminder() {
		line += "  ⏰ " + h.NotificationTime
	}
	return line
}

type HabitIncCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	By    int    `help:"Units to add." default:"1"`
}

func (c *HabitIncCmd) Run(ctx *cli.Context) error {
	if c.By < 1 {
		return fmt.Errorf("--by must be at least 1")
	}
	return mutate(ctx, c.Habit, c.By, streak.Increment{})
}

type HabitDecCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	By    int    `help:"Units to remove." default:"1"`
}

func (c *HabitDecCmd) Run(ctx *cli.Context) error {
	if c.By < 1 {
		return fmt.Errorf("--by must be at least 1")
	}
	return mutate(ctx, c.Habit, c.By, streak.Decrement{})
}

type HabitSetCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Value int    `arg:"" help:"Progress for today; clamped to 0..target."`
}

func (c *HabitSetCmd) Run(ctx *cli.Context) error {
	return mutate(ctx, c.Habit, 1, streak.Set{Value: c.Value})
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	return mutate(ctx, c.Habit, 1, streak.Toggle{Checked: true})
}

type HabitUndoCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitUndoCmd) Run(ctx *cli.Context) error {
	return mutate(ctx, c.Habit, 1, streak.Toggle{Checked: false})
}

func mutate(ctx *cli.Context, ref string, times int, m streak.Mutation) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	habit, err := resolve(store, ref)
	if err != nil {
		return err
	}

	for i := 0; i < times; i++ {
		if habit, err = store.Apply(ctx.Ctx(), habit.ID, m); err != nil {
			return err
		}
	}

	status := "not done"
	if streak.CompletedOn(habit, store.Now()) {
		status = "done"
	}
	if habit.IsBinary() {
		fmt.Printf("%s: %s, streak %d (best %d)\n", habit.Name, status, habit.CurrentStreak, habit.BestStreak)
	} else {
		fmt.Printf("%s: %d/%d, streak %d (best %d)\n", habit.Name, habit.CurrentValue, habit.TargetValue, habit.CurrentStreak, habit.BestStreak)
	}
	return nil
}

type HabitRecordCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitRecordCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}
	habit, err := resolve(store, c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(ctx.Ctx(), c.Date)
	if err != nil {
		return err
	}
	if day.After(store.Now()) {
		return fmt.Errorf("cannot record a completion in the future")
	}

	key := utils.DayKey(day)
	if _, err := store.RecordCompletion(ctx.Ctx(), habit.ID, key); err != nil {
		return err
	}
	fmt.Printf("Recorded %q for %s\n", habit.Name, key)
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only (id or name)."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	store, err := ctx.Habits(ctx.Ctx())
	if err != nil {
		return err
	}

	selected := store.Habits()
	if c.Habit != "" {
		habit, err := resolve(store, c.Habit)
		if err != nil {
			return err
		}
		selected = []models.Habit{habit}
	}
	if len(selected) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	done := make(map[int64]map[string]bool)
	for _, r := range store.Completions() {
		if done[r.HabitID] == nil {
			done[r.HabitID] = make(map[string]bool)
		}
		done[r.HabitID][r.Day] = true
	}

	fmt.Print(renderLog(selected, done, store.Now(), c.Days))
	return nil
}

const logNameWidth = 20

// renderLog draws one row per habit and one column per day ending at end.
// Days the habit is not scheduled show as blank.
func renderLog(habits []models.Habit, done map[int64]map[string]bool, end time.Time, days int) string {
	var b strings.Builder
	start := utils.AddDays(utils.StartOfDay(end), -(days - 1))

	fmt.Fprintf(&b, "Habit log (last %d days):\n\n", days)
	b.WriteString(strings.Repeat(" ", logNameWidth))
	for i := 0; i < days; i++ {
		fmt.Fprintf(&b, " %5s", utils.AddDays(start, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", logNameWidth+6*days))
	b.WriteString("\n")

	for _, h := range habits {
		b.WriteString(padName(h.Name))
		for i := 0; i < days; i++ {
			day := utils.AddDays(start, i)
			switch {
			case done[h.ID][utils.DayKey(day)]:
				b.WriteString("  x   ")
			case schedule.IsDueAt(h.Schedule, day):
				b.WriteString("  .   ")
			default:
				b.WriteString("      ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func padName(name string) string {
	runes := []rune(name)
	if len(runes) > logNameWidth {
		return string(runes[:logNameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", logNameWidth-len(runes))
}

// resolve finds a habit by id, "#id" or case-insensitive name.
func resolve(store *habitstore.Store, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(strings.TrimPrefix(ref, "#"), 10, 64); err == nil {
		if h, ok := store.Habit(id); ok {
			return h, nil
		}
		return models.Habit{}, fmt.Errorf("habit %d: %w", id, habitstore.ErrHabitNotFound)
	}

	var matches []models.Habit
	for _, h := range store.Habits() {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, habitstore.ErrHabitNotFound)
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, h := range matches {
		ids[i] = "#" + strconv.FormatInt(h.ID, 10)
	}
	return models.Habit{}, fmt.Errorf("%d habits are named %q (%s); use an id", len(matches), ref, strings.Join(ids, ", "))
}
