package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/routinely/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// DayKey returns the calendar day of t (in t's location) as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsPreviousDay reports whether prev falls on the calendar day immediately
// before cur in loc. Comparison is by date, so 23:59 and 00:01 on adjacent
// days count while two times 20 hours apart on the same day do not.
func IsPreviousDay(prev, cur time.Time, loc *time.Location) bool {
	return SameDay(prev, AddDays(StartOfDay(cur.In(loc)), -1), loc)
}

// AddDays moves t by n calendar days, keeping the wall clock in t's location.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b in loc
// (negative when b is before a).
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	// Noon UTC dates are immune to DST gaps.
	da := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// StartOfWeek returns the Monday of the ISO week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return AddDays(day, -offset)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	// Return the date at midnight in the specified timezone
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := time.Parse(constants.TimeFormat, timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
