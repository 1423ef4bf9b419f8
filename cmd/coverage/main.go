// Command coverage walks every date of a span of civil years through the
// engine. It fails when a date cannot be resolved to exactly one church year
// and season, and reports per season how many days carry no propers.
//
// Usage:
//
//	go run ./cmd/coverage -start 2024 -years 30 -o coverage.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/config"
	"github.com/zapponejosh/lutherald/internal/lectionary"
	"github.com/zapponejosh/lutherald/internal/logger"
	"github.com/zapponejosh/lutherald/internal/tablesource"
)

// TestResult holds the result for a single date
type TestResult struct {
	Date    string              `json:"date"`
	Success bool                `json:"success"`
	Year    int                 `json:"church_year,omitempty"`
	Season  lectionary.SeasonID `json:"season,omitempty"`
	Kind    lectionary.DayKind  `json:"kind,omitempty"`
	Label   string              `json:"label,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// SeasonStats tracks statistics for each season
type SeasonStats struct {
	Season      lectionary.SeasonID        `json:"season"`
	TotalDays   int                        `json:"total_days"`
	ProperDays  int                        `json:"proper_days"`
	EmptyDays   int                        `json:"empty_days"`
	ByKind      map[lectionary.DayKind]int `json:"by_kind"`
	EmptyDates  []string                   `json:"-"`
}

// YearStats tracks statistics for each civil year
type YearStats struct {
	Year        int `json:"year"`
	TotalDays   int `json:"total_days"`
	SuccessDays int `json:"success_days"`
	FailedDays  int `json:"failed_days"`
}

// Analysis holds the analyzed results
type Analysis struct {
	TotalDays    int                                  `json:"total_days"`
	TotalSuccess int                                  `json:"total_success"`
	TotalFailed  int                                  `json:"total_failed"`
	BySeason     map[lectionary.SeasonID]*SeasonStats `json:"by_season"`
	ByYear       map[int]*YearStats                   `json:"by_year"`
	Skipped      map[int][]calendar.Skipped           `json:"-"`
	Failures     []TestResult                         `json:"failures,omitempty"`
}

func main() {
	startYear := flag.Int("start", time.Now().Year(), "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
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

	endYear := *startYear + *years - 1
	if *startYear < calendar.MinYear || endYear > calendar.MaxYear {
		logger.Error(ctx, "year span out of range", calendar.ErrInvalidDate,
			slog.Int("min", calendar.MinYear), slog.Int("max", calendar.MaxYear))
		os.Exit(2)
	}

	fmt.Println("================================================================")
	fmt.Println("Church Year - Full Coverage Test")
	fmt.Println("================================================================")
	fmt.Printf("Tables:      %s\n", engine.Tables().Fingerprint())
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Printf("Total Years: %d\n", *years)
	fmt.Println()

	results := testAllDates(engine, *startYear, endYear, *verbose)
	analysis := analyzeResults(results)
	analysis.Skipped = collectSkipped(engine, *startYear, endYear)

	printSummary(analysis, *startYear, endYear)
	printSeasons(analysis)
	printSkipped(analysis)
	printFailures(analysis)

	if *outputFile != "" {
		if err := saveResults(*outputFile, analysis); err != nil {
			logger.Error(ctx, "save results", err, slog.String("path", *outputFile))
		}
	}

	if analysis.TotalFailed > 0 {
		closeFn()
		os.Exit(1)
	}
}

func testAllDates(engine *calendar.Engine, startYear, endYear int, verbose bool) []TestResult {
	var results []TestResult

	start := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, 12, 31, 0, 0, 0, 0, time.UTC)
	totalDays := calendar.DaysBetween(start, end) + 1

	fmt.Printf("Testing %d days...\n\n", totalDays)

	tested, failed, lastProgress := 0, 0, -1

	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		result := testDate(engine, current)
		results = append(results, result)

		tested++
		if !result.Success {
			failed++
		}

		progress := (tested * 100) / totalDays
		if progress != lastProgress && progress%10 == 0 {
			fmt.Printf("  Progress: %d%% (%d/%d) - Failures: %d\n", progress, tested, totalDays, failed)
			lastProgress = progress
		}

		if verbose {
			status := "✓"
			if !result.Success {
				status = "✗"
			}
			fmt.Printf("  %s %s: %d %-14s %s\n", status, result.Date, result.Year, result.Season, result.Label)
			if !result.Success {
				fmt.Printf("      Error: %s\n", result.Error)
			}
		}
	}

	fmt.Println()
	return results
}

func testDate(engine *calendar.Engine, date time.Time) TestResult {
	result := TestResult{Date: calendar.FormatDate(date)}

	info, err := engine.Day(date)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrAmbiguousYear):
			result.Error = "claimed by two church years"
		case errors.Is(err, calendar.ErrNoSeason):
			result.Error = "claimed by no church year"
		default:
			result.Error = err.Error()
		}
		return result
	}

	result.Success = true
	result.Year = info.Year
	result.Season = info.Season
	result.Label = info.Label()
	if info.Record != nil {
		result.Kind = info.Record.Kind
	}
	return result
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		BySeason: make(map[lectionary.SeasonID]*SeasonStats),
		ByYear:   make(map[int]*YearStats),
	}

	for _, r := range results {
		analysis.TotalDays++

		date, _ := calendar.ParseDate(r.Date)
		year := date.Year()
		if _, ok := analysis.ByYear[year]; !ok {
			analysis.ByYear[year] = &YearStats{Year: year}
		}
		analysis.ByYear[year].TotalDays++

		if !r.Success {
			analysis.TotalFailed++
			analysis.ByYear[year].FailedDays++
			analysis.Failures = append(analysis.Failures, r)
			continue
		}

		analysis.TotalSuccess++
		analysis.ByYear[year].SuccessDays++

		stats, ok := analysis.BySeason[r.Season]
		if !ok {
			stats = &SeasonStats{Season: r.Season, ByKind: make(map[lectionary.DayKind]int)}
			analysis.BySeason[r.Season] = stats
		}
		stats.TotalDays++
		if r.Kind == "" {
			stats.EmptyDays++
			stats.EmptyDates = append(stats.EmptyDates, r.Date)
		} else {
			stats.ProperDays++
			stats.ByKind[r.Kind]++
		}
	}

	return analysis
}

// collectSkipped gathers the table entries each church year could not place.
func collectSkipped(engine *calendar.Engine, startYear, endYear int) map[int][]calendar.Skipped {
	out := make(map[int][]calendar.Skipped)
	for year := startYear - 1; year <= endYear; year++ {
		if year < calendar.MinYear-1 {
			continue
		}
		cy, err := engine.ChurchYear(year)
		if err != nil {
			continue
		}
		if s := cy.Skipped(); len(s) > 0 {
			out[year] = s
		}
	}
	return out
}

func printSummary(analysis *Analysis, startYear, endYear int) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Total Days Tested: %d\n", analysis.TotalDays)
	fmt.Printf("Resolved:          %d (%.1f%%)\n", analysis.TotalSuccess,
		float64(analysis.TotalSuccess)/float64(analysis.TotalDays)*100)
	fmt.Printf("Failed:            %d (%.1f%%)\n", analysis.TotalFailed,
		float64(analysis.TotalFailed)/float64(analysis.TotalDays)*100)
	fmt.Println()

	fmt.Println("By Year:")
	for year := startYear; year <= endYear; year++ {
		if stats, ok := analysis.ByYear[year]; ok {
			status := "✓"
			if stats.FailedDays > 0 {
				status = "✗"
			}
			fmt.Printf("  %s %d: %d/%d days resolved\n", status, year, stats.SuccessDays, stats.TotalDays)
		}
	}
	fmt.Println()
}

func printSeasons(analysis *Analysis) {
	fmt.Println("================================================================")
	fmt.Println("PROPERS BY SEASON")
	fmt.Println("================================================================")

	for _, id := range lectionary.Seasons() {
		stats, ok := analysis.BySeason[id]
		if !ok {
			continue
		}
		fmt.Printf("\n%s: %d days, %d with propers, %d without\n",
			id, stats.TotalDays, stats.ProperDays, stats.EmptyDays)
		if n := len(stats.EmptyDates); n > 0 {
			sample := stats.EmptyDates[:min(n, 3)]
			fmt.Printf("  first without propers: %v\n", sample)
		}

		kinds := make([]string, 0, len(stats.ByKind))
		for kind := range stats.ByKind {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %-10s %d\n", kind, stats.ByKind[lectionary.DayKind(kind)])
		}
	}
	fmt.Println()
}

func printSkipped(analysis *Analysis) {
	if len(analysis.Skipped) == 0 {
		return
	}

	fmt.Println("================================================================")
	fmt.Println("SKIPPED TABLE ENTRIES (anchor did not fall in the year)")
	fmt.Println("================================================================")

	years := make([]int, 0, len(analysis.Skipped))
	for year := range analysis.Skipped {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		for _, s := range analysis.Skipped[year] {
			fmt.Printf("  %d  %-14s %-24s %s\n", year, s.Season, s.Anchor, s.Display)
		}
	}
	fmt.Println()
}

func printFailures(analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		fmt.Println("No failures!")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("FAILURES (Date | Error)")
	fmt.Println("================================================================")

	for i, f := range analysis.Failures {
		if i >= 50 {
			fmt.Printf("  ... and %d more\n", len(analysis.Failures)-50)
			break
		}
		fmt.Printf("  %s | %s\n", f.Date, f.Error)
	}
	fmt.Println()
}

func saveResults(filename string, analysis *Analysis) error {
	output := struct {
		GeneratedAt string    `json:"generated_at"`
		Analysis    *Analysis `json:"analysis"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Analysis:    analysis,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	fmt.Printf("Results saved to: %s\n", filename)
	return nil
}
