// Package migrations carries the report schema for each supported SQL
// dialect and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", d)
}

// Up applies every pending migration for the dialect.
func Up(ctx context.Context, db *sql.DB, d Dialect, log *zap.Logger) error {
	gd, err := d.goose()
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(files, string(d))
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(gd, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", d, err)
	}
	for _, r := range results {
		log.Info("migration_applied",
			zap.String("dialect", string(d)),
			zap.Int64("version", r.Source.Version),
			zap.Duration("elapsed", r.Duration),
		)
	}
	return nil
}
