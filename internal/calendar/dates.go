package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported range of civil years. A date in MinYear still needs the church
// year that began in the Advent before it, and MaxYear's church year needs
// Easter of the following year.
const (
	MinYear = 1583
	MaxYear = 9998
)

// DateLayout is the ISO layout used for date strings and day-record keys.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned for malformed date strings and for dates
	// outside the supported range.
	ErrInvalidDate = errors.New("invalid date")
)

// Midnight strips the time of day, keeping the calendar date as written in
// t's own location. All engine dates are UTC midnights.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date and checks it against the supported range.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	if err := CheckDate(t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// CheckDate rejects dates outside [MinYear, MaxYear].
func CheckDate(t time.Time) error {
	if y := t.Year(); y < MinYear || y > MaxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidDate, y, MinYear, MaxYear)
	}
	return nil
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NextWeekday returns the first given weekday strictly after date. It never
// returns date itself, even when date already falls on that weekday.
func NextWeekday(date time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(date.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return date.AddDate(0, 0, delta)
}

// LastWeekday returns the last given weekday strictly before date.
func LastWeekday(date time.Time, wd time.Weekday) time.Time {
	delta := (int(date.Weekday()) - int(wd) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return date.AddDate(0, 0, -delta)
}

// OnOrAfter returns date if it falls on wd, otherwise the next wd.
func OnOrAfter(date time.Time, wd time.Weekday) time.Time {
	return NextWeekday(date.AddDate(0, 0, -1), wd)
}

// AddWeeks moves date by n weeks.
func AddWeeks(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, 7*n)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)) / (24 * time.Hour))
}

// DayName returns the day of week name (Sunday, Monday, etc.)
func DayName(date time.Time) string {
	return date.Weekday().String()
}

// Ordinal returns the ordinal form of a number (1st, 2nd, 3rd, 4th, etc.)
func Ordinal(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}
