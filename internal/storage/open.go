// Package storage picks a report store from a DSN.
package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/repo"
	"github.com/hamed0406/netcheck/internal/repo/memory"
	"github.com/hamed0406/netcheck/internal/repo/postgres"
	"github.com/hamed0406/netcheck/internal/repo/sqlite"
)

// Open returns a store for dsn:
//
//	""                            in-memory
//	postgres://... postgresql://  Postgres
//	sqlite://path  file:path      SQLite file
func Open(ctx context.Context, dsn string, log *zap.Logger) (repo.ReportStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case dsn == "":
		log.Info("store_selected", zap.String("kind", "memory"))
		return memory.New(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		log.Info("store_selected", zap.String("kind", "postgres"))
		return postgres.New(ctx, dsn, log)
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		path := strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite://"), "file:")
		if path == "" {
			return nil, fmt.Errorf("sqlite dsn %q has no path", dsn)
		}
		log.Info("store_selected", zap.String("kind", "sqlite"), zap.String("path", path))
		return sqlite.New(ctx, path, log)
	}
	return nil, fmt.Errorf("unsupported store dsn %q (want postgres://, sqlite:// or empty)", dsn)
}
