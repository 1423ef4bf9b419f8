// Command lookup resolves one date and prints its day options and the
// service prepared for an order of service as JSON.
//
// Usage:
//
//	go run ./cmd/lookup -date 2024-02-14
//	go run ./cmd/lookup -date 2024-12-25 -order chief_service -day feast -hymn default
//
// Tables come from TABLE_SOURCE (see internal/config).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/config"
	"github.com/zapponejosh/lutherald/internal/lectionary"
	"github.com/zapponejosh/lutherald/internal/logger"
	"github.com/zapponejosh/lutherald/internal/ordo"
	"github.com/zapponejosh/lutherald/internal/psalter"
	"github.com/zapponejosh/lutherald/internal/tablesource"
)

// Result is the document printed to stdout.
type Result struct {
	Date         string                     `json:"date"`
	Weekday      string                     `json:"weekday"`
	ChurchYear   int                        `json:"church_year"`
	Season       lectionary.SeasonID        `json:"season"`
	SeasonStart  string                     `json:"season_start"`
	SeasonEnd    string                     `json:"season_end"`
	Options      []ordo.DayOption           `json:"options"`
	Service      *ordo.Service              `json:"service,omitempty"`
	Festival     *lectionary.FestivalRecord `json:"festival,omitempty"`
	TableVersion string                     `json:"table_version"`
}

func main() {
	dateFlag := flag.String("date", time.Now().Format(calendar.DateLayout), "Date to resolve (YYYY-MM-DD)")
	orderFlag := flag.String("order", "", "Order of service: matins, vespers, chief_service (omit for options only)")
	dayFlag := flag.String("day", "default", "Day option: default, feast, ember")
	hymnFlag := flag.String("hymn", ordo.HymnDefault, `Chief hymn: "default", a hymn number, or "same"`)
	replaceFlag := flag.Bool("replace-psalm", false, "Replace the psalm with the introit (matins, vespers)")
	psalterFlag := flag.Bool("psalter", false, "Add the monthly psalter (matins, vespers)")
	responsoryFlag := flag.String("responsory", "", "Borrow the chief service responsory from matins or vespers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.Setup(cfg)
	ctx := logger.WithRunID(context.Background(), logger.NewRunID())

	settings, err := buildSettings(*orderFlag, *dayFlag, *hymnFlag, *responsoryFlag, *replaceFlag, *psalterFlag)
	if err != nil {
		logger.Error(ctx, "invalid flags", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, log, *dateFlag, settings, os.Stdout); err != nil {
		logger.Error(ctx, "lookup failed", err, slog.String("date", *dateFlag))
		os.Exit(1)
	}
}

// buildSettings turns the flags into service settings; nil means options only.
func buildSettings(order, day, hymn, responsory string, replace, monthly bool) (*ordo.Settings, error) {
	if order == "" {
		return nil, nil
	}

	o, err := lectionary.ParseOrder(order)
	if err != nil {
		return nil, err
	}
	typ, err := ordo.ParseOptionType(day)
	if err != nil {
		return nil, err
	}

	s := ordo.Defaults(o)
	s.Day = typ
	s.ChiefHymn = hymn
	s.ReplacePsalm = replace
	s.MonthlyPsalter = monthly
	s.ResponsivePsalm = lectionary.Order(responsory)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, dateStr string, settings *ordo.Settings, out *os.File) error {
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		return err
	}

	engine, closeFn, err := tablesource.OpenEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := psalter.Default()
	if err != nil {
		return err
	}
	builder := ordo.NewBuilder(engine, p)

	info, err := engine.Day(date)
	if err != nil {
		return err
	}
	options, err := builder.DayOptions(date)
	if err != nil {
		return err
	}

	res := Result{
		Date:         calendar.FormatDate(date),
		Weekday:      info.Weekday,
		ChurchYear:   info.Year,
		Season:       info.Season,
		SeasonStart:  calendar.FormatDate(info.SeasonStart),
		SeasonEnd:    calendar.FormatDate(info.SeasonEnd),
		Options:      options,
		TableVersion: engine.Tables().Fingerprint(),
	}
	if f, ok := engine.Festival(date); ok {
		res.Festival = &f
	}

	if settings != nil {
		svc, err := builder.Build(date, *settings)
		if err != nil {
			return err
		}
		res.Service = svc
	}

	logger.Debug(ctx, "resolved date",
		slog.String("date", res.Date),
		slog.String("season", string(res.Season)),
		slog.Int("options", len(options)),
	)

	return writeJSON(out, res, term.IsTerminal(int(out.Fd())))
}

// writeJSON indents for terminals and writes one compact line otherwise.
func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
