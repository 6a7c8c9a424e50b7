package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/repo"
	"github.com/hamed0406/netcheck/internal/repo/migrations"
)

var _ repo.ReportStore = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// New connects, pings and migrates the schema.
func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = migrations.Up(ctx, db, migrations.Postgres, log)
	_ = db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Save(ctx context.Context, r *domain.Report) (int64, error) {
	if !r.Finalized() {
		return 0, repo.ErrNotFinalized
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO reports (checked_at, overall_status)
		 VALUES ($1, $2)
		 RETURNING id`,
		r.Timestamp, string(r.OverallStatus),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}

	batch := &pgx.Batch{}
	for i, o := range r.Outcomes {
		batch.Queue(
			`INSERT INTO outcomes (report_id, position, name, passed, detail)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, i, o.Name, o.Passed, o.Detail,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("insert outcomes: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("report_saved", zap.Int64("id", id), zap.Int("outcomes", len(r.Outcomes)))
	return id, nil
}

func (s *Store) Latest(ctx context.Context) (*repo.Record, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM reports ORDER BY checked_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (*repo.Record, error) {
	var (
		checkedAt time.Time
		status    string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT checked_at, overall_status FROM reports WHERE id = $1`, id,
	).Scan(&checkedAt, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}
	outcomes, err := s.outcomes(ctx, id)
	if err != nil {
		return nil, err
	}
	return repo.Restore(id, checkedAt.UTC(), outcomes, status)
}

func (s *Store) List(ctx context.Context, limit int) ([]repo.Record, error) {
	if limit <= 0 {
		limit = repo.DefaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM reports ORDER BY checked_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan report ids: %w", err)
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

func (s *Store) outcomes(ctx context.Context, id int64) ([]domain.Outcome, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, passed, detail
		   FROM outcomes
		  WHERE report_id = $1
		  ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("outcomes for %d: %w", id, err)
	}
	defer rows.Close()

	var out []domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		if err := rows.Scan(&o.Name, &o.Passed, &o.Detail); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
