// Package schedule encodes the weekdays a habit is due on as a compact token.
//
// A token is either "daily" or a sorted comma list of ISO weekday numbers
// (1=Monday .. 7=Sunday), for example "1,3,5".
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
)

// Set is a set of ISO weekday numbers.
type Set map[int]bool

var dayAbbrev = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// AllDays returns a set holding every weekday.
func AllDays() Set {
	s := make(Set, constants.DaysInWeek)
	for d := 1; d <= constants.DaysInWeek; d++ {
		s[d] = true
	}
	return s
}

// NewSet builds a set from weekday numbers, ignoring values outside 1..7.
func NewSet(days ...int) Set {
	s := make(Set, len(days))
	for _, d := range days {
		if validDay(d) {
			s[d] = true
		}
	}
	return s
}

// Days returns the members in weekday order.
func (s Set) Days() []int {
	days := make([]int, 0, len(s))
	for d := range s {
		if validDay(d) && s[d] {
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// Equal reports whether both sets hold the same weekdays.
func (s Set) Equal(other Set) bool {
	a, b := s.Days(), other.Days()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Encode returns "daily" for all seven days, otherwise the sorted weekday
// numbers joined by commas.
func Encode(days []int) string {
	set := NewSet(days...)
	if len(set) == constants.DaysInWeek {
		return constants.ScheduleDaily
	}
	parts := make([]string, 0, len(set))
	for _, d := range set.Days() {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// Decode parses a token. Malformed or out-of-range entries are dropped, so an
// empty or garbage token yields an empty set: the habit is due on no day.
func Decode(token string) Set {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, constants.ScheduleDaily) {
		return AllDays()
	}
	set := make(Set)
	for _, part := range strings.Split(token, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || !validDay(d) {
			continue
		}
		set[d] = true
	}
	return set
}

// IsDueOn reports whether weekday (1=Monday .. 7=Sunday) is in the token's set.
func IsDueOn(token string, weekday int) bool {
	return Decode(token)[weekday]
}

// IsDueAt reports whether the habit is due on t's weekday in t's location.
func IsDueAt(token string, t time.Time) bool {
	return IsDueOn(token, ISOWeekday(t.Weekday()))
}

// ISOWeekday maps Go's Sunday-first numbering onto 1=Monday .. 7=Sunday.
func ISOWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// Describe returns a human-readable label for a token.
func Describe(token string) string {
	set := Decode(token)
	switch {
	case len(set) == constants.DaysInWeek:
		return "Daily"
	case len(set) == 0:
		return "Never"
	case set.Equal(NewSet(1, 2, 3, 4, 5)):
		return "Weekdays"
	case set.Equal(NewSet(6, 7)):
		return "Weekend"
	}
	names := make([]string, 0, len(set))
	for _, d := range set.Days() {
		names = append(names, dayAbbrev[d])
	}
	return strings.Join(names, ", ")
}

// ParseDays parses user input such as "daily", "weekdays", "mon,wed,fri" or
// "1,3,5" into ISO weekday numbers. Unlike Decode it rejects unknown entries.
func ParseDays(s string) ([]int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", constants.ScheduleDaily, "everyday", "all":
		return AllDays().Days(), nil
	case "weekdays":
		return []int{1, 2, 3, 4, 5}, nil
	case "weekend", "weekends":
		return []int{6, 7}, nil
	}

	dayMap := map[string]int{
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
		"sun": 7, "sunday": 7,
	}

	set := make(Set)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if d, ok := dayMap[part]; ok {
			set[d] = true
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || !validDay(d) {
			return nil, fmt.Errorf("invalid weekday: %q (use mon..sun or 1..7)", part)
		}
		set[d] = true
	}
	return set.Days(), nil
}

func validDay(d int) bool {
	return d >= 1 && d <= constants.DaysInWeek
}
