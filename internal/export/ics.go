// Package export renders church years in calendar formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// ProductID identifies the generator in exported calendars.
const ProductID = "-//Lutherald//Church Year//EN"

// Options controls what goes into an ICS feed.
type Options struct {
	// Weekdays adds the propagated weekday records. Off by default; a feed of
	// Sundays, feasts and Ember days is what calendar clients usually want.
	Weekdays bool

	// Festivals adds the fixed-date festivals falling inside the church year.
	Festivals bool

	// Stamp is written as DTSTAMP on every event. Zero means now.
	Stamp time.Time
}

// ChurchYearICS builds an all-day event for every registered day of cy and,
// with Options.Festivals, for every festival inside it. Event UIDs combine
// the date and the table fingerprint so that re-importing the same feed is
// idempotent while a table change produces fresh events.
func ChurchYearICS(cy *calendar.ChurchYear, tables *lectionary.Tables, opts Options) *ics.Calendar {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	fp := shortFingerprint(tables.Fingerprint())

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(fmt.Sprintf("Church Year %d-%d", cy.Year(), cy.Year()+1))

	for _, season := range cy.Seasons() {
		for _, date := range season.Dates() {
			rec, _ := season.Day(date)
			if rec.Kind == lectionary.KindWeekday && !opts.Weekdays {
				continue
			}
			uid := fmt.Sprintf("%s-%s@lutherald", calendar.FormatDate(date), fp)
			addEvent(cal, uid, date, stamp, rec.Display, describe(season.ID, rec.Color, rec.Readings))
		}
	}

	if opts.Festivals {
		for _, obs := range festivalsBetween(tables.Festivals(), cy.Start(), cy.End()) {
			f := obs.Festival
			uid := fmt.Sprintf("festival-%s-%s@lutherald", calendar.FormatDate(obs.Date), fp)
			season, _ := cy.FindSeason(obs.Date)
			addEvent(cal, uid, obs.Date, stamp, f.Name, describe(season.ID, f.Color, f.Readings))
		}
	}

	return cal
}

// WriteChurchYearICS serializes the feed of cy to w.
func WriteChurchYearICS(w io.Writer, cy *calendar.ChurchYear, tables *lectionary.Tables, opts Options) error {
	cal := ChurchYearICS(cy, tables, opts)
	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write ics: %w", err)
	}
	return nil
}

func addEvent(cal *ics.Calendar, uid string, date, stamp time.Time, summary, description string) {
	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(date)
	event.SetAllDayEndAt(date.AddDate(0, 0, 1))
	event.SetSummary(summary)
	event.SetDescription(description)
}

func describe(season lectionary.SeasonID, color lectionary.Color, r lectionary.Readings) string {
	lines := []string{
		"Season: " + string(season),
		"Color: " + string(color),
		"Epistle: " + r.Epistle,
		"Gospel: " + r.Gospel,
	}
	if r.OT != "" {
		lines = append(lines, "Old Testament: "+r.OT)
	}
	return strings.Join(lines, "\n")
}

// festivalsBetween places festivals on the civil years spanned by [start, end].
func festivalsBetween(idx *lectionary.FestivalIndex, start, end time.Time) []lectionary.Observance {
	var out []lectionary.Observance
	for year := start.Year(); year <= end.Year(); year++ {
		for _, obs := range idx.InYear(year) {
			if obs.Date.Before(start) || obs.Date.After(end) {
				continue
			}
			out = append(out, obs)
		}
	}
	return out
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	if fp == "" {
		return "unversioned"
	}
	return fp
}
