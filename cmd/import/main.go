// Command import loads the YAML rule tables into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -dir tables/ -db data/lutherald.db
//	go run ./cmd/import -list -db data/lutherald.db
//
// This tool:
// 1. Reads and validates the three rule tables (embedded ones without -dir)
// 2. Creates/opens the SQLite database and runs migrations
// 3. Stores the tables as a new table set in a single transaction
// 4. Reads the table set back and checks it against the input
//
// Table sets are keyed by the fingerprint of the raw tables, so importing
// unchanged tables again is reported and skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/lutherald/internal/database"
	"github.com/zapponejosh/lutherald/internal/tablesource"
)

func main() {
	dir := flag.String("dir", "", "Directory holding the YAML tables (default: embedded tables)")
	dbPath := flag.String("db", "data/lutherald.db", "Path to SQLite database")
	list := flag.Bool("list", false, "List imported table sets and exit")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var err error
	if *list {
		err = listSets(*dbPath, logger)
	} else {
		err = run(*dir, *dbPath, logger)
	}
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dir, dbPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate tables
	// =========================================================================
	var src tablesource.Source = tablesource.Embedded{}
	if dir != "" {
		src = tablesource.Dir{Path: dir}
	}

	tables, err := tablesource.Load(ctx, src, logger)
	if err != nil {
		return err
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	db, err := openDB(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// =========================================================================
	// Step 3: Store the table set
	// =========================================================================
	id, err := db.SaveTables(ctx, tables, src.String())
	if errors.Is(err, database.ErrDuplicate) {
		logger.Info("tables already imported, nothing to do",
			slog.Int64("table_set", id),
			slog.String("fingerprint", tables.Fingerprint()),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("save tables: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	stats, err := db.GetTableSetStats(ctx, id)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	loaded, err := db.LoadTableSet(ctx, id)
	if err != nil {
		return fmt.Errorf("read back table set: %w", err)
	}
	if loaded.Festivals().Len() != tables.Festivals().Len() {
		return fmt.Errorf("read back %d festivals, imported %d", loaded.Festivals().Len(), tables.Festivals().Len())
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int64("table_set", id),
		slog.Int("moveable_feasts", stats.MoveableFeasts),
		slog.Int("ember_days", stats.EmberDays),
		slog.Int("festivals", stats.Festivals),
		slog.Duration("elapsed", elapsed),
	)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Table set:           #%d\n", id)
	fmt.Printf("Source:              %s\n", src)
	fmt.Printf("Fingerprint:         %s\n", tables.Fingerprint())
	fmt.Printf("Moveable feasts:     %d\n", stats.MoveableFeasts)
	fmt.Printf("Ember days:          %d\n", stats.EmberDays)
	fmt.Printf("Festivals:           %d\n", stats.Festivals)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

func listSets(dbPath string, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := openDB(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sets, err := db.ListTableSets(ctx)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Println("No table sets imported.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-14s %s\n", "ID", "IMPORTED", "FINGERPRINT", "SOURCE")
	for _, s := range sets {
		fmt.Printf("%-5d %-20s %-14s %s\n", s.ID, s.ImportedAt.Format("2006-01-02 15:04:05"), s.Fingerprint[:12], s.Source)
	}
	return nil
}

func openDB(ctx context.Context, dbPath string, logger *slog.Logger) (*database.DB, error) {
	logger.Debug("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrated, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("migrations complete", slog.Int("applied", migrated))

	return db, nil
}
