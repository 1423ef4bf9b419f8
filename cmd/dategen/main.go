// Command dategen prints the anchor dates and seasons of a church year, and
// optionally writes the year as an ICS calendar feed.
//
// Usage:
//
//	go run ./cmd/dategen -year 2024
//	go run ./cmd/dategen -year 2024 -ics church-year-2024.ics -festivals
//
// The church year "2024" begins on the first Sunday in Advent 2024.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/config"
	"github.com/zapponejosh/lutherald/internal/export"
	"github.com/zapponejosh/lutherald/internal/logger"
	"github.com/zapponejosh/lutherald/internal/tablesource"
)

func main() {
	year := flag.Int("year", calendar.LiturgicalYear(time.Now()), "Church year (the civil year its Advent begins in)")
	icsPath := flag.String("ics", "", "Write the church year as an ICS feed to this file (- for stdout)")
	festivals := flag.Bool("festivals", false, "Include fixed festivals in the ICS feed")
	weekdays := flag.Bool("weekdays", false, "Include weekday records in the ICS feed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.Setup(cfg)
	ctx := logger.WithRunID(context.Background(), logger.NewRunID())

	engine, closeFn, err := tablesource.OpenEngine(ctx, cfg, log)
	if err != nil {
		logger.Error(ctx, "load engine", err)
		os.Exit(1)
	}
	defer closeFn()

	cy, err := engine.ChurchYear(*year)
	if err != nil {
		logger.Error(ctx, "build church year", err, slog.Int("year", *year))
		os.Exit(1)
	}

	if *icsPath != "" {
		opts := export.Options{Festivals: *festivals, Weekdays: *weekdays}
		if err := writeICS(*icsPath, cy, engine, opts); err != nil {
			logger.Error(ctx, "write ics", err, slog.String("path", *icsPath))
			os.Exit(1)
		}
		logger.Info(ctx, "ics written", slog.String("path", *icsPath), slog.Int("year", *year))
		if *icsPath == "-" {
			return
		}
	}

	printYear(cy)
}

func writeICS(path string, cy *calendar.ChurchYear, engine *calendar.Engine, opts export.Options) error {
	if path == "-" {
		return export.WriteChurchYearICS(os.Stdout, cy, engine.Tables(), opts)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteChurchYearICS(f, cy, engine.Tables(), opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printYear(cy *calendar.ChurchYear) {
	a := cy.Anchors()

	fmt.Printf("=== Church Year %d-%d ===\n\n", cy.Year(), cy.Year()+1)

	fmt.Println("Key Dates:")
	keyDates := []struct {
		name string
		date time.Time
	}{
		{"First Sunday in Advent", a.FirstAdvent()},
		{"Christmas", a.Christmas(0)},
		{"Epiphany", a.Epiphany()},
		{"Transfiguration", a.Transfiguration()},
		{"Septuagesima", a.Septuagesima()},
		{"Ash Wednesday", a.AshWednesday()},
		{"Good Friday", a.GoodFriday()},
		{"Easter", a.Easter()},
		{"Ascension", a.Ascension()},
		{"Pentecost", a.Pentecost()},
		{"Trinity Sunday", a.TrinitySunday()},
		{"Last Sunday", a.LastSunday(0)},
		{"Next Advent", a.NextAdvent()},
	}
	for _, kd := range keyDates {
		fmt.Printf("  %-24s %s (%s)\n", kd.name+":", calendar.FormatDate(kd.date), calendar.DayName(kd.date))
	}
	fmt.Printf("  %-24s %d\n", "Sundays after Epiphany:", len(a.EpiphanySundays()))
	fmt.Printf("  %-24s %d\n", "Sundays after Trinity:", len(a.TrinitySundays()))
	fmt.Println()

	fmt.Println("Seasons:")
	for _, s := range cy.Seasons() {
		fmt.Printf("  %-14s %s - %s  %3d days, %3d with propers\n",
			s.ID, calendar.FormatDate(s.Start), calendar.FormatDate(s.End), s.Length(), s.Len())
	}
	fmt.Println()

	skipped := cy.Skipped()
	if len(skipped) == 0 {
		fmt.Println("All table entries resolved.")
		return
	}
	fmt.Printf("Skipped table entries (%d):\n", len(skipped))
	for _, s := range skipped {
		fmt.Printf("  %-14s %-22s %s\n", s.Season, s.Anchor, s.Display)
	}
}
