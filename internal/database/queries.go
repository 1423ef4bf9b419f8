package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns nil if parsing fails.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return &t
	}

	// SQLite datetime('now') format
	t, err = time.Parse("2006-01-02 15:04:05", ns.String)
	if err == nil {
		return &t
	}

	t, err = time.Parse("2006-01-02T15:04:05.999999", ns.String)
	if err == nil {
		return &t
	}

	return nil
}

// =============================================================================
// Table Set Writes
// =============================================================================

// SaveTables stores a table set and returns its id.
//
// Table sets are keyed by fingerprint. Saving tables that were already
// imported returns the existing id together with an error wrapping
// ErrDuplicate.
func (db *DB) SaveTables(ctx context.Context, tables *lectionary.Tables, source string) (int64, error) {
	fp := tables.Fingerprint()
	if fp == "" {
		return 0, errors.New("save tables: tables carry no fingerprint")
	}

	existing, err := db.tableSetIDByFingerprint(ctx, fp)
	switch {
	case err == nil:
		return existing, fmt.Errorf("table set %s already imported as #%d: %w", fp[:12], existing, ErrDuplicate)
	case !IsNotFound(err):
		return 0, err
	}

	var id int64
	err = db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO table_sets (fingerprint, source) VALUES (?, ?)",
			fp, source,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("table set %s: %w", fp[:12], ErrDuplicate)
			}
			return fmt.Errorf("insert table set: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("get table set id: %w", err)
		}

		if err := insertMoveableFeasts(ctx, tx, id, tables); err != nil {
			return err
		}
		if err := insertEmberDays(ctx, tx, id, tables); err != nil {
			return err
		}
		return insertFestivals(ctx, tx, id, tables)
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("table set saved",
		slog.Int64("id", id),
		slog.String("fingerprint", fp),
		slog.String("source", source),
	)

	return id, nil
}

func insertMoveableFeasts(ctx context.Context, tx *Tx, setID int64, tables *lectionary.Tables) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO moveable_feasts (table_set_id, season, position, display, anchor, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare moveable feast insert: %w", err)
	}
	defer stmt.Close()

	for _, season := range lectionary.Seasons() {
		for i, feast := range tables.MoveableFeasts(season) {
			payload, err := json.Marshal(feast)
			if err != nil {
				return fmt.Errorf("marshal %s[%d]: %w", season, i, err)
			}
			if _, err := stmt.ExecContext(ctx, setID, string(season), i, feast.Display, feast.Anchor.String(), string(payload)); err != nil {
				return fmt.Errorf("insert %s[%d]: %w", season, i, err)
			}
		}
	}
	return nil
}

func insertEmberDays(ctx context.Context, tx *Tx, setID int64, tables *lectionary.Tables) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ember_days (table_set_id, season, weekday, payload)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare ember day insert: %w", err)
	}
	defer stmt.Close()

	for _, season := range lectionary.EmberSeasons() {
		days := tables.EmberDays(season)
		for _, wd := range lectionary.SortedWeekdays(days) {
			payload, err := json.Marshal(days[wd])
			if err != nil {
				return fmt.Errorf("marshal %s.%s: %w", season, wd, err)
			}
			if _, err := stmt.ExecContext(ctx, setID, string(season), int(wd), string(payload)); err != nil {
				return fmt.Errorf("insert %s.%s: %w", season, wd, err)
			}
		}
	}
	return nil
}

func insertFestivals(ctx context.Context, tx *Tx, setID int64, tables *lectionary.Tables) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO festivals (table_set_id, month_day, name, payload)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare festival insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range tables.Festivals().All() {
		payload, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal festival %s: %w", f.Date, err)
		}
		if _, err := stmt.ExecContext(ctx, setID, f.Date, f.Name, string(payload)); err != nil {
			return fmt.Errorf("insert festival %s: %w", f.Date, err)
		}
	}
	return nil
}

// =============================================================================
// Table Set Queries
// =============================================================================

func (db *DB) tableSetIDByFingerprint(ctx context.Context, fp string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM table_sets WHERE fingerprint = ?", fp).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("query table set: %w", err)
	}
	return id, nil
}

// GetTableSet retrieves a table set by id.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetTableSet(ctx context.Context, id int64) (*TableSet, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, fingerprint, source, imported_at
		FROM table_sets
		WHERE id = ?
	`, id)
	return scanTableSet(row)
}

// LatestTableSet returns the most recently imported table set.
// Returns ErrNotFound if nothing was imported yet.
func (db *DB) LatestTableSet(ctx context.Context) (*TableSet, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, fingerprint, source, imported_at
		FROM table_sets
		ORDER BY id DESC
		LIMIT 1
	`)
	return scanTableSet(row)
}

// ListTableSets returns all table sets, newest first.
func (db *DB) ListTableSets(ctx context.Context) ([]TableSet, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, fingerprint, source, imported_at
		FROM table_sets
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query table sets: %w", err)
	}
	defer rows.Close()

	var sets []TableSet
	for rows.Next() {
		set, err := scanTableSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table sets: %w", err)
	}

	return sets, nil
}

// GetTableSetStats counts the rows stored for a table set.
func (db *DB) GetTableSetStats(ctx context.Context, id int64) (*TableSetStats, error) {
	if _, err := db.GetTableSet(ctx, id); err != nil {
		return nil, err
	}

	var stats TableSetStats
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM moveable_feasts WHERE table_set_id = ?),
			(SELECT COUNT(*) FROM ember_days WHERE table_set_id = ?),
			(SELECT COUNT(*) FROM festivals WHERE table_set_id = ?)
	`, id, id, id).Scan(&stats.MoveableFeasts, &stats.EmberDays, &stats.Festivals)
	if err != nil {
		return nil, fmt.Errorf("count table set rows: %w", err)
	}

	return &stats, nil
}

// DeleteTableSet removes a table set and its rows.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteTableSet(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM table_sets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete table set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTableSet(row rowScanner) (*TableSet, error) {
	var set TableSet
	var importedAt sql.NullString

	err := row.Scan(&set.ID, &set.Fingerprint, &set.Source, &importedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan table set: %w", err)
	}

	if t := parseTimestamp(importedAt); t != nil {
		set.ImportedAt = *t
	}
	return &set, nil
}

// =============================================================================
// Loading Tables
// =============================================================================

// LoadTables rebuilds the most recently imported tables.
func (db *DB) LoadTables(ctx context.Context) (*lectionary.Tables, error) {
	set, err := db.LatestTableSet(ctx)
	if err != nil {
		return nil, err
	}
	return db.LoadTableSet(ctx, set.ID)
}

// LoadTableSet rebuilds the tables of one table set. The rows are validated
// again on the way out, exactly as tables read from files are.
func (db *DB) LoadTableSet(ctx context.Context, id int64) (*lectionary.Tables, error) {
	set, err := db.GetTableSet(ctx, id)
	if err != nil {
		return nil, err
	}

	moveable, err := db.loadMoveableFeasts(ctx, id)
	if err != nil {
		return nil, err
	}
	ember, err := db.loadEmberDays(ctx, id)
	if err != nil {
		return nil, err
	}
	festivals, err := db.loadFestivals(ctx, id)
	if err != nil {
		return nil, err
	}

	tables, err := lectionary.New(moveable, ember, festivals)
	if err != nil {
		return nil, fmt.Errorf("table set #%d: %w", id, err)
	}
	tables.SetFingerprint(set.Fingerprint)

	db.logger.Debug("table set loaded",
		slog.Int64("id", id),
		slog.String("fingerprint", set.Fingerprint),
	)

	return tables, nil
}

func (db *DB) loadMoveableFeasts(ctx context.Context, setID int64) (map[lectionary.SeasonID][]lectionary.MoveableFeast, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT season, payload
		FROM moveable_feasts
		WHERE table_set_id = ?
		ORDER BY season, position
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query moveable feasts: %w", err)
	}
	defer rows.Close()

	out := make(map[lectionary.SeasonID][]lectionary.MoveableFeast)
	for rows.Next() {
		var season, payload string
		if err := rows.Scan(&season, &payload); err != nil {
			return nil, fmt.Errorf("scan moveable feast: %w", err)
		}
		var feast lectionary.MoveableFeast
		if err := json.Unmarshal([]byte(payload), &feast); err != nil {
			return nil, fmt.Errorf("unmarshal moveable feast: %w", err)
		}
		id := lectionary.SeasonID(season)
		out[id] = append(out[id], feast)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moveable feasts: %w", err)
	}

	return out, nil
}

func (db *DB) loadEmberDays(ctx context.Context, setID int64) (map[lectionary.SeasonID]map[string]lectionary.EmberDay, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT season, weekday, payload
		FROM ember_days
		WHERE table_set_id = ?
		ORDER BY season, weekday
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query ember days: %w", err)
	}
	defer rows.Close()

	out := make(map[lectionary.SeasonID]map[string]lectionary.EmberDay)
	for rows.Next() {
		var season, payload string
		var weekday int
		if err := rows.Scan(&season, &weekday, &payload); err != nil {
			return nil, fmt.Errorf("scan ember day: %w", err)
		}
		var day lectionary.EmberDay
		if err := json.Unmarshal([]byte(payload), &day); err != nil {
			return nil, fmt.Errorf("unmarshal ember day: %w", err)
		}
		id := lectionary.SeasonID(season)
		if out[id] == nil {
			out[id] = make(map[string]lectionary.EmberDay)
		}
		out[id][time.Weekday(weekday).String()] = day
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ember days: %w", err)
	}

	return out, nil
}

func (db *DB) loadFestivals(ctx context.Context, setID int64) ([]lectionary.FestivalRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT payload
		FROM festivals
		WHERE table_set_id = ?
		ORDER BY id
	`, setID)
	if err != nil {
		return nil, fmt.Errorf("query festivals: %w", err)
	}
	defer rows.Close()

	var out []lectionary.FestivalRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan festival: %w", err)
		}
		var f lectionary.FestivalRecord
		if err := json.Unmarshal([]byte(payload), &f); err != nil {
			return nil, fmt.Errorf("unmarshal festival: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate festivals: %w", err)
	}

	return out, nil
}
