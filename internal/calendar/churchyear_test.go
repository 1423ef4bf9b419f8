package calendar

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// testTables loads the embedded rule tables.
func testTables(t *testing.T) *lectionary.Tables {
	t.Helper()

	tables, err := lectionary.Default()
	if err != nil {
		t.Fatalf("load default tables: %v", err)
	}
	return tables
}

// testEngine creates an engine over the embedded tables with a quiet logger.
func testEngine(t *testing.T) *Engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	engine, err := NewEngine(testTables(t), logger)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestChurchYear_SeasonsCoverYear(t *testing.T) {
	tables := testTables(t)

	for year := 2000; year < 2050; year++ {
		cy, err := NewChurchYear(year, tables)
		if err != nil {
			t.Fatalf("NewChurchYear(%d): %v", year, err)
		}

		seasons := cy.Seasons()
		if len(seasons) != 6 {
			t.Fatalf("%d: %d seasons, want 6", year, len(seasons))
		}
		if !seasons[0].Start.Equal(cy.Anchors().FirstAdvent()) {
			t.Fatalf("%d: year starts %s, want Advent 1", year, FormatDate(seasons[0].Start))
		}

		total := 0
		for i, s := range seasons {
			if s.ID != lectionary.Seasons()[i] {
				t.Fatalf("%d: season %d is %s, want %s", year, i, s.ID, lectionary.Seasons()[i])
			}
			if s.End.Before(s.Start) {
				t.Fatalf("%d: season %s is empty", year, s)
			}
			if i > 0 && !s.Start.Equal(seasons[i-1].End.AddDate(0, 0, 1)) {
				t.Fatalf("%d: gap or overlap between %s and %s", year, seasons[i-1], s)
			}
			total += s.Length()
		}

		nextAdvent := NewAnchors(year + 1).FirstAdvent()
		if !cy.End().AddDate(0, 0, 1).Equal(nextAdvent) {
			t.Fatalf("%d: year ends %s, want the day before %s", year, FormatDate(cy.End()), FormatDate(nextAdvent))
		}
		if want := DaysBetween(seasons[0].Start, nextAdvent); total != want {
			t.Fatalf("%d: seasons cover %d days, want %d", year, total, want)
		}

		// Every day is claimed by exactly one season.
		for d := cy.Start(); !d.After(cy.End()); d = d.AddDate(0, 0, 1) {
			claims := 0
			for _, s := range seasons {
				if s.Contains(d) {
					claims++
				}
			}
			if claims != 1 {
				t.Fatalf("%d: %s claimed by %d seasons", year, FormatDate(d), claims)
			}
		}
	}
}

func TestChurchYear_Registry(t *testing.T) {
	cy, err := NewChurchYear(2023, testTables(t))
	if err != nil {
		t.Fatalf("NewChurchYear: %v", err)
	}

	tests := []struct {
		date        time.Time
		wantDisplay string
		wantKind    lectionary.DayKind
		wantColor   lectionary.Color
	}{
		{date(2023, time.December, 3), "First Sunday in Advent (Ad Te Levavi)", lectionary.KindProper, lectionary.ColorViolet},
		{date(2023, time.December, 4), "Monday after Advent 1", lectionary.KindWeekday, lectionary.ColorViolet},
		{date(2023, time.December, 20), "Ember Wednesday", lectionary.KindEmber, lectionary.ColorViolet},
		{date(2023, time.December, 31), "First Sunday after Christmas", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.January, 1), "Circumcision and Name of Jesus", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.January, 21), "The Transfiguration of Our Lord", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.February, 12), "Monday after Quinquagesima", lectionary.KindWeekday, lectionary.ColorGreen},
		{date(2024, time.February, 14), "Ash Wednesday", lectionary.KindProper, lectionary.ColorBlack},
		{date(2024, time.February, 19), "Monday after Invocabit", lectionary.KindWeekday, lectionary.ColorViolet},
		{date(2024, time.February, 21), "Ember Wednesday", lectionary.KindEmber, lectionary.ColorViolet},
		{date(2024, time.March, 25), "Monday of Holy Week", lectionary.KindWeekday, lectionary.ColorViolet},
		{date(2024, time.March, 28), "Holy (Maundy) Thursday", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.March, 30), "Saturday of Holy Week", lectionary.KindWeekday, lectionary.ColorViolet},
		{date(2024, time.March, 31), "The Resurrection of Our Lord", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.April, 1), "Easter Monday", lectionary.KindWeekday, lectionary.ColorWhite},
		{date(2024, time.May, 6), "Rogation Monday", lectionary.KindRogation, lectionary.ColorViolet},
		{date(2024, time.May, 9), "The Ascension of Our Lord", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.May, 22), "Ember Wednesday", lectionary.KindEmber, lectionary.ColorRed},
		{date(2024, time.May, 26), "The Holy Trinity", lectionary.KindProper, lectionary.ColorWhite},
		{date(2024, time.November, 10), "Third-Last Sunday of the Church Year", lectionary.KindProper, lectionary.ColorGreen},
		{date(2024, time.November, 24), "Last Sunday of the Church Year", lectionary.KindProper, lectionary.ColorGreen},
	}

	for _, tt := range tests {
		t.Run(FormatDate(tt.date), func(t *testing.T) {
			rec, ok := cy.Day(tt.date)
			if !ok {
				t.Fatalf("no record for %s", FormatDate(tt.date))
			}
			if rec.Display != tt.wantDisplay {
				t.Errorf("Display = %q, want %q", rec.Display, tt.wantDisplay)
			}
			if rec.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", rec.Kind, tt.wantKind)
			}
			if rec.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", rec.Color, tt.wantColor)
			}
		})
	}

	// Weekdays carry the Sunday's collect and psalms over.
	sunday, _ := cy.Day(date(2023, time.December, 3))
	monday, _ := cy.Day(date(2023, time.December, 4))
	if monday.Collect != sunday.Collect || !reflect.DeepEqual(monday.Psalms, sunday.Psalms) {
		t.Error("weekday record did not carry over collect and psalms")
	}
	if monday.Introit != "" || monday.Hymn != nil {
		t.Error("weekday record should not carry introit or hymn")
	}

	// A weekday with no propers has no record.
	if _, ok := cy.Day(date(2024, time.July, 10)); ok {
		t.Error("ordinary weekday 2024-07-10 should have no record")
	}
}

func TestChurchYear_Skipped(t *testing.T) {
	cy, err := NewChurchYear(2023, testTables(t))
	if err != nil {
		t.Fatalf("NewChurchYear: %v", err)
	}

	skipped := make(map[string]bool)
	for _, s := range cy.Skipped() {
		skipped[s.Anchor.String()] = true
	}

	for _, want := range []string{"epiphany_sunday(3)", "epiphany_sunday(5)", "christmas_sunday(2)", "sunday_after_trinity(27)"} {
		if !skipped[want] {
			t.Errorf("%s not reported as skipped (got %v)", want, skipped)
		}
	}
	if skipped["epiphany_sunday(2)"] {
		t.Error("epiphany_sunday(2) exists in 2023 and should not be skipped")
	}
}

func TestWriteEmberDays_Idempotent(t *testing.T) {
	tables := testTables(t)
	cy, err := NewChurchYear(2023, tables)
	if err != nil {
		t.Fatalf("NewChurchYear: %v", err)
	}

	snapshot := func() map[string]lectionary.DayRecord {
		out := make(map[string]lectionary.DayRecord)
		for _, s := range cy.Seasons() {
			for _, d := range s.Dates() {
				rec, _ := s.Day(d)
				out[FormatDate(d)] = rec
			}
		}
		return out
	}

	before := snapshot()
	for _, id := range lectionary.EmberSeasons() {
		if err := WriteEmberDays(cy.Season(id), cy.Anchors(), tables.EmberDays(id)); err != nil {
			t.Fatalf("WriteEmberDays(%s): %v", id, err)
		}
	}
	if after := snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("rewriting Ember days changed the registry")
	}
}

func TestSeason_Register(t *testing.T) {
	s := NewSeason(lectionary.SeasonAdvent, date(2023, time.December, 3), date(2023, time.December, 25))
	if !s.End.Equal(date(2023, time.December, 24)) {
		t.Fatalf("End = %s, want 2023-12-24", FormatDate(s.End))
	}

	wednesday := date(2023, time.December, 20)
	replaced, err := s.Register(wednesday, lectionary.DayRecord{Display: "Wednesday after Advent 3"})
	if err != nil || replaced {
		t.Fatalf("first Register = (%v, %v), want (false, nil)", replaced, err)
	}

	replaced, err = s.Register(wednesday, lectionary.DayRecord{Display: "Ember Wednesday"})
	if err != nil || !replaced {
		t.Fatalf("second Register = (%v, %v), want (true, nil)", replaced, err)
	}
	if rec, _ := s.Day(wednesday); rec.Display != "Ember Wednesday" {
		t.Errorf("Day = %q, want the later registration", rec.Display)
	}

	_, err = s.Register(date(2023, time.December, 25), lectionary.DayRecord{Display: "Christmas"})
	if !errors.Is(err, ErrOutOfSeason) {
		t.Errorf("Register outside season error = %v, want ErrOutOfSeason", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestNewChurchYear_Errors(t *testing.T) {
	readings := lectionary.Readings{Epistle: "Acts 2:1-21", Gospel: "John 14:23-31"}

	// Pentecost filed under Advent is a table bug; it never reaches a
	// church year.
	_, err := lectionary.New(map[lectionary.SeasonID][]lectionary.MoveableFeast{
		lectionary.SeasonAdvent: {{
			Display:  "Pentecost",
			Anchor:   lectionary.Anchor{Kind: lectionary.AnchorPentecost},
			Color:    lectionary.ColorRed,
			Readings: readings,
		}},
	}, nil, nil)
	if !errors.Is(err, lectionary.ErrInvalidTable) {
		t.Errorf("lectionary.New error = %v, want ErrInvalidTable", err)
	}

	if _, err := NewChurchYear(1400, testTables(t)); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("NewChurchYear(1400) error = %v, want ErrInvalidDate", err)
	}
	if _, err := NewChurchYear(2023, nil); err == nil {
		t.Error("NewChurchYear without tables should fail")
	}
}
