// Package tablesource loads the rule tables an engine is built from. Tables
// can come from the binary itself, a directory, the SQLite import database or
// an S3 bucket; every source hands back validated, fingerprinted tables.
package tablesource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapponejosh/lutherald/internal/config"
	"github.com/zapponejosh/lutherald/internal/database"
	"github.com/zapponejosh/lutherald/internal/lectionary"
)

// Source loads rule tables.
type Source interface {
	Load(ctx context.Context) (*lectionary.Tables, error)
	String() string
}

// Embedded serves the tables compiled into the binary.
type Embedded struct{}

func (Embedded) Load(context.Context) (*lectionary.Tables, error) {
	return lectionary.Default()
}

func (Embedded) String() string { return config.SourceEmbedded }

// Dir reads the three YAML tables from a directory.
type Dir struct {
	Path string
}

func (d Dir) Load(context.Context) (*lectionary.Tables, error) {
	return lectionary.LoadDir(d.Path)
}

func (d Dir) String() string { return d.Path }

// SQLite serves the most recently imported table set.
type SQLite struct {
	DB *database.DB
}

func (s SQLite) Load(ctx context.Context) (*lectionary.Tables, error) {
	tables, err := s.DB.LoadTables(ctx)
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("no table set imported yet (run cmd/import): %w", err)
	}
	return tables, err
}

func (s SQLite) String() string { return "sqlite" }

// FromConfig builds the source selected by cfg. The returned close function
// releases what the source holds open and is never nil.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TableSource {
	case config.SourceEmbedded, "":
		return Embedded{}, noop, nil

	case config.SourceFile:
		return Dir{Path: cfg.TableDir}, noop, nil

	case config.SourceSQLite:
		db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), logger)
		if err != nil {
			return nil, noop, fmt.Errorf("open table database: %w", err)
		}
		if _, err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("migrate table database: %w", err)
		}
		return SQLite{DB: db}, db.Close, nil

	case config.SourceS3:
		src, err := NewS3(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown table source %q", cfg.TableSource)
}

// Load loads tables from src and logs where they came from.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*lectionary.Tables, error) {
	tables, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables from %s: %w", src, err)
	}

	logger.Info("rule tables loaded",
		slog.String("source", src.String()),
		slog.String("fingerprint", tables.Fingerprint()),
		slog.Int("festivals", tables.Festivals().Len()),
	)

	return tables, nil
}
