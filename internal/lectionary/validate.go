package lectionary

import (
	"errors"
	"fmt"
)

// ErrInvalidTable is wrapped by every ConfigError.
var ErrInvalidTable = errors.New("invalid rule table")

// ConfigError reports a rule-table row that failed validation. It is fatal at
// startup: an engine is never built from tables that produced one.
type ConfigError struct {
	Table string // file name of the table
	Path  string // location inside the table, e.g. "advent[2]"
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Table, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Table, e.Path, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidTable
}

// Validate checks all three tables and returns every problem found, joined.
func (t *Tables) Validate() error {
	var errs []error
	add := func(table, path, format string, args ...any) {
		errs = append(errs, &ConfigError{Table: table, Path: path, Msg: fmt.Sprintf(format, args...)})
	}

	for season, entries := range t.moveable {
		if !season.IsValid() {
			add(MoveableFeastsFile, string(season), "unknown season")
			continue
		}
		for i, e := range entries {
			path := fmt.Sprintf("%s[%d]", season, i)
			if e.Display == "" {
				add(MoveableFeastsFile, path, "display is required")
			}
			if err := e.Anchor.Validate(); err != nil {
				add(MoveableFeastsFile, path, "%v", err)
			} else if owner := e.Anchor.Season(); owner != season {
				add(MoveableFeastsFile, path, "%s always falls in %s, not %s", e.Anchor, owner, season)
			}
			if !e.Color.IsValid() {
				add(MoveableFeastsFile, path, "unknown color %q", e.Color)
			}
			if err := validateReadings(e.Readings); err != nil {
				add(MoveableFeastsFile, path, "%v", err)
			}
			if err := validatePsalms(e.Psalms); err != nil {
				add(MoveableFeastsFile, path, "%v", err)
			}
			if len(e.WeekdayReadings) > 6 {
				add(MoveableFeastsFile, path, "at most 6 weekday readings, got %d", len(e.WeekdayReadings))
			}
			if len(e.WeekdayReadings) > 0 && e.WeekdayDisplay == "" {
				add(MoveableFeastsFile, path, "weekday_display is required with weekday_readings")
			}
			for j, r := range e.WeekdayReadings {
				if err := validateReadings(r); err != nil {
					add(MoveableFeastsFile, fmt.Sprintf("%s.weekday_readings[%d]", path, j), "%v", err)
				}
			}
		}
	}

	emberSeasons := make(map[SeasonID]bool)
	for _, s := range EmberSeasons() {
		emberSeasons[s] = true
	}
	for season, days := range t.ember {
		if !emberSeasons[season] {
			add(EmberDaysFile, string(season), "season has no Ember or Rogation days")
			continue
		}
		for wd, day := range days {
			path := fmt.Sprintf("%s.%s", season, wd)
			if err := validateReadings(day.Readings); err != nil {
				add(EmberDaysFile, path, "%v", err)
			}
			if err := validatePsalms(day.Psalms); err != nil {
				add(EmberDaysFile, path, "%v", err)
			}
		}
	}

	if t.festivals != nil {
		for _, f := range t.festivals.All() {
			if f.Name == "" {
				add(FestivalsFile, f.Date, "name is required")
			}
			if !f.Color.IsValid() {
				add(FestivalsFile, f.Date, "unknown color %q", f.Color)
			}
			if err := validateReadings(f.Readings); err != nil {
				add(FestivalsFile, f.Date, "%v", err)
			}
			if err := validatePsalms(f.Psalms); err != nil {
				add(FestivalsFile, f.Date, "%v", err)
			}
		}
	}

	return errors.Join(errs...)
}

func validateReadings(r Readings) error {
	if r.Epistle == "" || r.Gospel == "" {
		return errors.New("epistle and gospel readings are required")
	}
	return nil
}

func validatePsalms(p Psalms) error {
	for _, order := range p.orderKeys() {
		if !order.IsValid() {
			return fmt.Errorf("psalm slot for unknown order %q", order)
		}
	}
	return nil
}
