package calendar

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

var (
	// ErrNoSeason means neither candidate church year claims a date. It
	// indicates broken season boundaries.
	ErrNoSeason = errors.New("date belongs to no season")

	// ErrAmbiguousYear means both candidate church years claim a date. It
	// indicates overlapping season boundaries.
	ErrAmbiguousYear = errors.New("date claimed by two church years")
)

// Engine resolves dates against one immutable set of rule tables. It holds
// no mutable state and is safe for concurrent use; every lookup builds fresh
// ChurchYear values.
type Engine struct {
	tables *lectionary.Tables
	logger *slog.Logger
}

// NewEngine creates an engine over tables. A nil logger discards output.
func NewEngine(tables *lectionary.Tables, logger *slog.Logger) (*Engine, error) {
	if tables == nil {
		return nil, errors.New("engine requires rule tables")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{tables: tables, logger: logger}, nil
}

// Tables returns the rule tables the engine was built with.
func (e *Engine) Tables() *lectionary.Tables {
	return e.tables
}

// ChurchYear builds the church year beginning in Advent of year.
func (e *Engine) ChurchYear(year int) (*ChurchYear, error) {
	cy, err := NewChurchYear(year, e.tables)
	if err != nil {
		e.logger.Error("build church year", "year", year, "error", err)
		return nil, err
	}
	for _, s := range cy.Skipped() {
		e.logger.Debug("skipped unresolvable anchor",
			"year", year,
			"season", s.Season,
			"anchor", s.Anchor.String(),
			"display", s.Display,
		)
	}
	return cy, nil
}

// ResolveYear returns the church year that owns date. Both candidates, the
// years beginning in Advent of the previous and of the current civil year,
// are built; exactly one must claim the date.
func (e *Engine) ResolveYear(date time.Time) (*ChurchYear, error) {
	date = Midnight(date)
	if err := CheckDate(date); err != nil {
		return nil, err
	}

	prev, err := e.ChurchYear(date.Year() - 1)
	if err != nil {
		return nil, err
	}
	cur, err := e.ChurchYear(date.Year())
	if err != nil {
		return nil, err
	}

	owner, err := ownerYear(date, prev, cur)
	if err != nil {
		e.logger.Error("resolve church year", "date", FormatDate(date), "error", err)
		return nil, err
	}
	return owner, nil
}

// ownerYear picks the one candidate whose seasons contain date.
func ownerYear(date time.Time, prev, cur *ChurchYear) (*ChurchYear, error) {
	_, inPrev := prev.FindSeason(date)
	_, inCur := cur.FindSeason(date)

	switch {
	case inPrev && inCur:
		return nil, fmt.Errorf("%w: %s in %d and %d", ErrAmbiguousYear, FormatDate(date), prev.Year(), cur.Year())
	case inCur:
		return cur, nil
	case inPrev:
		return prev, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoSeason, FormatDate(date))
}

// DayInfo is the result of a day lookup. Record is nil when no day record is
// registered for the date; that is a normal outcome, not an error.
type DayInfo struct {
	Date        time.Time             `json:"-"`
	Year        int                   `json:"church_year"`
	Season      lectionary.SeasonID   `json:"season"`
	SeasonStart time.Time             `json:"-"`
	SeasonEnd   time.Time             `json:"-"`
	Weekday     string                `json:"weekday"`
	Record      *lectionary.DayRecord `json:"record,omitempty"`
}

// Found reports whether a day record exists.
func (d DayInfo) Found() bool {
	return d.Record != nil
}

// Label returns the record's display name, or the weekday when there is none.
func (d DayInfo) Label() string {
	if d.Record != nil && d.Record.Display != "" {
		return d.Record.Display
	}
	return d.Weekday
}

// Day resolves date to its church year and season and returns its record.
func (e *Engine) Day(date time.Time) (DayInfo, error) {
	date = Midnight(date)
	cy, err := e.ResolveYear(date)
	if err != nil {
		return DayInfo{}, err
	}

	season, _ := cy.FindSeason(date)
	info := DayInfo{
		Date:        date,
		Year:        cy.Year(),
		Season:      season.ID,
		SeasonStart: season.Start,
		SeasonEnd:   season.End,
		Weekday:     DayName(date),
	}
	if rec, ok := season.Day(date); ok {
		info.Record = &rec
	}
	return info, nil
}

// Lookup parses a YYYY-MM-DD string and resolves it with Day.
func (e *Engine) Lookup(s string) (DayInfo, error) {
	date, err := ParseDate(s)
	if err != nil {
		return DayInfo{}, err
	}
	return e.Day(date)
}

// Festival returns the fixed festival on date's month and day. It never
// consults the church year; callers that want festival priority ask for it
// explicitly.
func (e *Engine) Festival(date time.Time) (lectionary.FestivalRecord, bool) {
	return e.tables.Festivals().Lookup(date)
}
