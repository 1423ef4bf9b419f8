package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1TableSets,
	2: migrationV2TableRows,
}

// migrationV1TableSets creates the registry of imported table sets. A table
// set is one import of the three rule tables, identified by the fingerprint
// of their raw bytes; importing identical tables twice is refused.
const migrationV1TableSets = `
CREATE TABLE IF NOT EXISTS table_sets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- BLAKE2b-256 hex digest of the raw moveable-feast, Ember and festival tables
    fingerprint TEXT NOT NULL UNIQUE,

    -- Where the tables came from: "embedded", a directory, an s3:// URL
    source TEXT NOT NULL,

    imported_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// migrationV2TableRows stores the rows of each table set.
//
// Rows keep their table order (position) because later moveable-feast rows
// overwrite earlier ones when a church year is built. The row body is stored
// as JSON; season, weekday and month_day are broken out for lookup and for
// the uniqueness constraints.
const migrationV2TableRows = `
CREATE TABLE IF NOT EXISTS moveable_feasts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_set_id INTEGER NOT NULL,

    season TEXT NOT NULL CHECK (season IN (
        'advent',
        'christmas',
        'epiphany',
        'lententide',
        'easter',
        'ordinary_time'
    )),
    position INTEGER NOT NULL,
    display TEXT NOT NULL,
    anchor TEXT NOT NULL,
    payload TEXT NOT NULL,

    FOREIGN KEY (table_set_id) REFERENCES table_sets(id) ON DELETE CASCADE,
    UNIQUE (table_set_id, season, position)
);

CREATE TABLE IF NOT EXISTS ember_days (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_set_id INTEGER NOT NULL,

    season TEXT NOT NULL CHECK (season IN (
        'advent',
        'lententide',
        'easter',
        'ordinary_time'
    )),
    -- 0=Sunday through 6=Saturday
    weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
    payload TEXT NOT NULL,

    FOREIGN KEY (table_set_id) REFERENCES table_sets(id) ON DELETE CASCADE,
    UNIQUE (table_set_id, season, weekday)
);

CREATE TABLE IF NOT EXISTS festivals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    table_set_id INTEGER NOT NULL,

    -- "M-D", e.g. "12-25"
    month_day TEXT NOT NULL,
    name TEXT NOT NULL,
    payload TEXT NOT NULL,

    FOREIGN KEY (table_set_id) REFERENCES table_sets(id) ON DELETE CASCADE,
    UNIQUE (table_set_id, month_day)
);

CREATE INDEX IF NOT EXISTS idx_moveable_feasts_set
    ON moveable_feasts(table_set_id, season, position);

CREATE INDEX IF NOT EXISTS idx_ember_days_set
    ON ember_days(table_set_id, season);

CREATE INDEX IF NOT EXISTS idx_festivals_set
    ON festivals(table_set_id, month_day);
`
