package calendar

import (
	"fmt"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ChurchYear is one liturgical year, numbered by the civil year in which its
// Advent begins. It owns six seasons that cover every day from Advent 1
// through the day before the next Advent 1, populated from the rule tables
// when the year is built. It is not modified afterwards.
type ChurchYear struct {
	anchors Anchors
	seasons []*Season // canonical order
	skipped []Skipped
}

// Skipped records a table entry whose anchor had no date this year.
type Skipped struct {
	Season  lectionary.SeasonID
	Display string
	Anchor  lectionary.Anchor
}

// NewChurchYear builds the seasons of the church year beginning in Advent of
// year and registers the moveable feasts and Ember days of the tables.
func NewChurchYear(year int, tables *lectionary.Tables) (*ChurchYear, error) {
	if year < MinYear-1 || year > MaxYear {
		return nil, fmt.Errorf("%w: church year %d outside %d-%d", ErrInvalidDate, year, MinYear-1, MaxYear)
	}
	if tables == nil {
		return nil, fmt.Errorf("church year %d: no rule tables", year)
	}

	a := NewAnchors(year)
	cy := &ChurchYear{anchors: a}

	// Each season runs to the day before the next boundary.
	boundaries := []time.Time{
		a.FirstAdvent(),
		a.Christmas(0),
		a.Epiphany(),
		a.Septuagesima(),
		a.Easter(),
		a.Pentecost(),
		a.NextAdvent(),
	}
	for i, id := range lectionary.Seasons() {
		cy.seasons = append(cy.seasons, NewSeason(id, boundaries[i], boundaries[i+1]))
	}

	if err := cy.registerMoveableFeasts(tables); err != nil {
		return nil, fmt.Errorf("church year %d: %w", year, err)
	}
	for _, id := range lectionary.EmberSeasons() {
		days := tables.EmberDays(id)
		if days == nil {
			continue
		}
		if err := WriteEmberDays(cy.Season(id), a, days); err != nil {
			return nil, fmt.Errorf("church year %d: %w", year, err)
		}
	}

	return cy, nil
}

// Year returns the civil year in which this church year begins.
func (cy *ChurchYear) Year() int { return cy.anchors.Year() }

// Easter returns Easter Sunday of this church year.
func (cy *ChurchYear) Easter() time.Time { return cy.anchors.Easter() }

// Anchors returns the anchor dates of this church year.
func (cy *ChurchYear) Anchors() Anchors { return cy.anchors }

// Start returns Advent 1.
func (cy *ChurchYear) Start() time.Time { return cy.seasons[0].Start }

// End returns the Saturday before the next Advent 1.
func (cy *ChurchYear) End() time.Time { return cy.seasons[len(cy.seasons)-1].End }

// Seasons returns the six seasons in church-year order.
func (cy *ChurchYear) Seasons() []*Season {
	out := make([]*Season, len(cy.seasons))
	copy(out, cy.seasons)
	return out
}

// Season returns the season with the given id, or nil.
func (cy *ChurchYear) Season(id lectionary.SeasonID) *Season {
	for _, s := range cy.seasons {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindSeason returns the season containing date.
func (cy *ChurchYear) FindSeason(date time.Time) (*Season, bool) {
	for _, s := range cy.seasons {
		if s.Contains(date) {
			return s, true
		}
	}
	return nil, false
}

// Day returns the record registered for date, if date belongs to this year
// and has one.
func (cy *ChurchYear) Day(date time.Time) (lectionary.DayRecord, bool) {
	s, ok := cy.FindSeason(date)
	if !ok {
		return lectionary.DayRecord{}, false
	}
	return s.Day(date)
}

// Skipped returns the table entries that had no date this year.
func (cy *ChurchYear) Skipped() []Skipped {
	out := make([]Skipped, len(cy.skipped))
	copy(out, cy.skipped)
	return out
}
