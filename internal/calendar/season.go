package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ErrOutOfSeason is returned when a day is registered outside its season.
var ErrOutOfSeason = errors.New("date outside season")

// Season is a contiguous, inclusive range of dates plus the day records
// registered into it. Records are keyed by YYYY-MM-DD.
type Season struct {
	ID    lectionary.SeasonID
	Start time.Time
	End   time.Time

	days map[string]lectionary.DayRecord
}

// NewSeason builds the season running from start to the day before next.
func NewSeason(id lectionary.SeasonID, start, next time.Time) *Season {
	return &Season{
		ID:    id,
		Start: Midnight(start),
		End:   Midnight(next).AddDate(0, 0, -1),
		days:  make(map[string]lectionary.DayRecord),
	}
}

// Contains reports whether date falls in [Start, End].
func (s *Season) Contains(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(s.Start) && !d.After(s.End)
}

// Length returns the number of days in the season.
func (s *Season) Length() int {
	return DaysBetween(s.Start, s.End) + 1
}

// Register stores rec for date, replacing any record already there. replaced
// reports whether an earlier record was overwritten: later registrations win.
func (s *Season) Register(date time.Time, rec lectionary.DayRecord) (replaced bool, err error) {
	if !s.Contains(date) {
		return false, fmt.Errorf("%w: %s is not in %s (%s to %s)",
			ErrOutOfSeason, FormatDate(date), s.ID, FormatDate(s.Start), FormatDate(s.End))
	}
	key := FormatDate(date)
	_, replaced = s.days[key]
	s.days[key] = rec
	return replaced, nil
}

// Day returns the record registered for date.
func (s *Season) Day(date time.Time) (lectionary.DayRecord, bool) {
	rec, ok := s.days[FormatDate(date)]
	if !ok {
		return lectionary.DayRecord{}, false
	}
	return rec.Clone(), true
}

// Dates returns the registered dates in order.
func (s *Season) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s.days))
	for key := range s.days {
		d, _ := time.Parse(DateLayout, key)
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Len returns the number of registered days.
func (s *Season) Len() int {
	return len(s.days)
}

func (s *Season) String() string {
	return fmt.Sprintf("%s %s..%s", s.ID, FormatDate(s.Start), FormatDate(s.End))
}
