package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/repo"
)

var _ repo.ReportStore = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	records []repo.Record
}

func New() *Store {
	return &Store{records: make([]repo.Record, 0, 32)}
}

func (m *Store) Save(ctx context.Context, r *domain.Report) (int64, error) {
	if !r.Finalized() {
		return 0, repo.ErrNotFinalized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.records) + 1)
	// keep a private copy so later edits by the caller don't leak in
	cp := domain.Restore(r.Timestamp, r.Outcomes)
	m.records = append(m.records, repo.Record{ID: id, Report: cp})
	return id, nil
}

func (m *Store) Latest(ctx context.Context) (*repo.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.records) == 0 {
		return nil, repo.ErrNotFound
	}
	rec := m.newestFirst()[0]
	return &rec, nil
}

func (m *Store) Get(ctx context.Context, id int64) (*repo.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.records)) {
		return nil, repo.ErrNotFound
	}
	rec := m.records[id-1]
	return &rec, nil
}

func (m *Store) List(ctx context.Context, limit int) ([]repo.Record, error) {
	if limit <= 0 {
		limit = repo.DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sorted := m.newestFirst()
	return sorted[:min(limit, len(sorted))], nil
}

// newestFirst orders like the SQL stores: checked_at DESC, id DESC.
// Callers hold m.mu.
func (m *Store) newestFirst() []repo.Record {
	out := slices.Clone(m.records)
	slices.SortFunc(out, func(a, b repo.Record) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (m *Store) Close() error { return nil }
