package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/repo"
	"github.com/hamed0406/netcheck/internal/repo/migrations"
)

var _ repo.ReportStore = (*Store)(nil)

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// New opens (creating if needed) the database file at path and migrates it.
func New(ctx context.Context, path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000&_pragma=foreign_keys=1"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctxPing, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if err := migrations.Up(ctx, db, migrations.SQLite, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, r *domain.Report) (int64, error) {
	if !r.Finalized() {
		return 0, repo.ErrNotFinalized
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reports (checked_at, overall_status) VALUES (?, ?)`,
		r.Timestamp.UnixNano(), string(r.OverallStatus))
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, o := range r.Outcomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (report_id, position, name, passed, detail) VALUES (?, ?, ?, ?, ?)`,
			id, i, o.Name, o.Passed, o.Detail); err != nil {
			return 0, fmt.Errorf("insert outcome %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("report_saved", zap.Int64("id", id), zap.Int("outcomes", len(r.Outcomes)))
	return id, nil
}

func (s *Store) Latest(ctx context.Context) (*repo.Record, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM reports ORDER BY checked_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (*repo.Record, error) {
	var (
		nanos  int64
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT checked_at, overall_status FROM reports WHERE id = ?`, id).Scan(&nanos, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, passed, detail FROM outcomes WHERE report_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("outcomes for %d: %w", id, err)
	}
	defer rows.Close()
	var outcomes []domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		if err := rows.Scan(&o.Name, &o.Passed, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return repo.Restore(id, time.Unix(0, nanos).UTC(), outcomes, status)
}

func (s *Store) List(ctx context.Context, limit int) ([]repo.Record, error) {
	if limit <= 0 {
		limit = repo.DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM reports ORDER BY checked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	// one connection: release it before the per-report queries
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]repo.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}
