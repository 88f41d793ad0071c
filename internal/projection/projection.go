// Package projection derives the filtered and sorted habit lists the UI shows.
package projection

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/schedule"
	"github.com/julianstephens/routinely/internal/streak"
)

type FilterMode int

const (
	// Today keeps habits due on the current weekday.
	Today FilterMode = iota
	// All keeps every habit.
	All
	// Uncompleted keeps habits not completed today.
	Uncompleted
)

func (f FilterMode) String() string {
	switch f {
	case All:
		return "all"
	case Uncompleted:
		return "uncompleted"
	default:
		return "today"
	}
}

// ParseFilter reads the names produced by FilterMode.String.
func ParseFilter(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "":
		return Today, nil
	case "all":
		return All, nil
	case "uncompleted", "todo", "pending":
		return Uncompleted, nil
	}
	return Today, fmt.Errorf("unknown filter %q (want today, all or uncompleted)", s)
}

type SortMode int

const (
	// ByCreationDate lists newest first.
	ByCreationDate SortMode = iota
	// ByName uses locale-independent Unicode collation.
	ByName
	// ByStreak lists the longest current streak first.
	ByStreak
)

func (s SortMode) String() string {
	switch s {
	case ByName:
		return "name"
	case ByStreak:
		return "streak"
	default:
		return "date"
	}
}

// ParseSort reads the names produced by SortMode.String.
func ParseSort(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "created", "":
		return ByCreationDate, nil
	case "name":
		return ByName, nil
	case "streak":
		return ByStreak, nil
	}
	return ByCreationDate, fmt.Errorf("unknown sort %q (want date, name or streak)", s)
}

// Options are the user's view choices.
type Options struct {
	Filter   FilterMode
	Category string // empty matches every category
	Sort     SortMode
	// NameAscending is the direction for ByName. It is remembered while other
	// sort modes are active.
	NameAscending bool
}

func DefaultOptions() Options {
	return Options{Filter: Today, Sort: ByCreationDate, NameAscending: true}
}

// SelectSort switches to mode. Selecting ByName while it is already active
// flips the name direction.
func (o Options) SelectSort(mode SortMode) Options {
	if mode == ByName && o.Sort == ByName {
		o.NameAscending = !o.NameAscending
	}
	o.Sort = mode
	return o
}

// FromSettings builds options from persisted view preferences. Unknown
// values fall back to the defaults.
func FromSettings(s models.Settings) Options {
	o := DefaultOptions()
	if f, err := ParseFilter(s.DefaultFilter); err == nil {
		o.Filter = f
	}
	if m, err := ParseSort(s.DefaultSort); err == nil {
		o.Sort = m
	}
	o.NameAscending = s.NameAscending
	o.Category = s.DefaultCategory
	return o
}

// ApplyTo copies the options into s for persisting.
func (o Options) ApplyTo(s models.Settings) models.Settings {
	s.DefaultFilter = o.Filter.String()
	s.DefaultSort = o.Sort.String()
	s.NameAscending = o.NameAscending
	s.DefaultCategory = o.Category
	return s
}

// Project filters and sorts habits for now. The input is not modified and
// equal inputs always give the same order.
func Project(habits []models.Habit, opts Options, now time.Time) []models.Habit {
	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if keep(h, opts, now) {
			out = append(out, h)
		}
	}

	switch opts.Sort {
	case ByName:
		sortByName(out, opts.NameAscending)
	case ByStreak:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.CurrentStreak != b.CurrentStreak {
				return a.CurrentStreak > b.CurrentStreak
			}
			return newer(a, b)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return newer(out[i], out[j]) })
	}
	return out
}

func keep(h models.Habit, opts Options, now time.Time) bool {
	if opts.Category != "" && !strings.EqualFold(h.Category, opts.Category) {
		return false
	}
	switch opts.Filter {
	case Today:
		return schedule.IsDueAt(h.Schedule, now)
	case Uncompleted:
		return !streak.CompletedOn(h, now)
	default:
		return true
	}
}

// newer orders by creation time descending, then id descending.
func newer(a, b models.Habit) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func sortByName(habits []models.Habit, ascending bool) {
	// Collators keep scratch buffers, so each call gets its own.
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(habits, func(i, j int) bool {
		a, b := habits[i], habits[j]
		if cmp := c.CompareString(a.Name, b.Name); cmp != 0 {
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return a.ID < b.ID
	})
}

// Categories returns the distinct non-empty categories in collation order.
// Categories differing only in case are merged, keeping the first spelling.
func Categories(habits []models.Habit) []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range habits {
		if h.Category == "" {
			continue
		}
		key := strings.ToLower(h.Category)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.Category)
	}
	collate.New(language.Und, collate.IgnoreCase).SortStrings(out)
	return out
}
