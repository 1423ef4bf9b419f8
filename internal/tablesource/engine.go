package tablesource

import (
	"context"
	"log/slog"

	"github.com/zapponejosh/lutherald/internal/calendar"
	"github.com/zapponejosh/lutherald/internal/config"
)

// OpenEngine loads the tables selected by cfg and builds an engine over them.
// The returned close function is never nil.
func OpenEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*calendar.Engine, func() error, error) {
	src, closeFn, err := FromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, closeFn, err
	}

	tables, err := Load(ctx, src, logger)
	if err != nil {
		closeFn()
		return nil, func() error { return nil }, err
	}

	engine, err := calendar.NewEngine(tables, logger)
	if err != nil {
		closeFn()
		return nil, func() error { return nil }, err
	}
	return engine, closeFn, nil
}
