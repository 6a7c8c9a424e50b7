package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
)

var ErrNotFound = errors.New("report not found")

// Record is a stored report with its store-assigned id.
type Record struct {
	ID int64 `json:"id"`
	*domain.Report
}

// ReportStore persists finalized reports. List and Latest order by
// checked_at descending, then id descending.
type ReportStore interface {
	Save(ctx context.Context, r *domain.Report) (int64, error)
	Latest(ctx context.Context) (*Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 20

// ErrNotFinalized is returned by Save for reports still being built.
var ErrNotFinalized = errors.New("report is not finalized")

// Restore rebuilds a stored report and checks the stored status against
// the one derived from its outcomes.
func Restore(id int64, checkedAt time.Time, outcomes []domain.Outcome, storedStatus string) (*Record, error) {
	rec := &Record{ID: id, Report: domain.Restore(checkedAt, outcomes)}
	if string(rec.OverallStatus) != storedStatus {
		return nil, fmt.Errorf("report %d: stored status %q, outcomes give %q: %w",
			id, storedStatus, rec.OverallStatus, domain.ErrInconsistent)
	}
	return rec, nil
}
