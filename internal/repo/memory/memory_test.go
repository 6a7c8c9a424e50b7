package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/repo"
)

func finalized(ts time.Time, outcomes ...domain.Outcome) *domain.Report {
	return domain.Restore(ts, outcomes)
}

func TestMemoryStore_SaveGetLatestList(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Latest(ctx); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Latest on empty store: want ErrNotFound, got %v", err)
	}

	base := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	id1, err := s.Save(ctx, finalized(base, domain.Pass("a", "")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	id2, err := s.Save(ctx, finalized(base.Add(time.Minute), domain.Fail("a", "x")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Fatalf("ids=%d,%d", id1, id2)
	}

	latest, err := s.Latest(ctx)
	if err != nil || latest.ID != id2 || latest.OverallStatus != domain.StatusRestricted {
		t.Fatalf("Latest=%+v err=%v", latest, err)
	}

	got, err := s.Get(ctx, id1)
	if err != nil || got.OverallStatus != domain.StatusClear {
		t.Fatalf("Get=%+v err=%v", got, err)
	}
	if _, err := s.Get(ctx, 99); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}

	list, err := s.List(ctx, 1)
	if err != nil || len(list) != 1 || list[0].ID != id2 {
		t.Fatalf("List(1)=%+v err=%v", list, err)
	}
	list, _ = s.List(ctx, 0)
	if len(list) != 2 || list[1].ID != id1 {
		t.Fatalf("List(0) should use the default limit, newest first: %+v", list)
	}
}

func TestMemoryStore_RejectsUnfinalized(t *testing.T) {
	r := domain.NewReport(time.Now())
	if _, err := New().Save(context.Background(), r); !errors.Is(err, repo.ErrNotFinalized) {
		t.Fatalf("want ErrNotFinalized, got %v", err)
	}
}

func TestMemoryStore_OrdersByCheckedAtThenID(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	// saved out of time order, the last two share a timestamp
	late, _ := s.Save(ctx, finalized(base.Add(time.Hour), domain.Pass("a", "")))
	early, _ := s.Save(ctx, finalized(base, domain.Fail("a", "x")))
	tieA, _ := s.Save(ctx, finalized(base.Add(30*time.Minute), domain.Pass("a", "")))
	tieB, _ := s.Save(ctx, finalized(base.Add(30*time.Minute), domain.Pass("a", "")))

	latest, err := s.Latest(ctx)
	if err != nil || latest.ID != late {
		t.Fatalf("Latest should be the newest checked_at (id %d), got %+v err=%v", late, latest, err)
	}

	list, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []int64
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	want := []int64{late, tieB, tieA, early}
	if len(ids) != len(want) {
		t.Fatalf("ids=%v want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids=%v want %v", ids, want)
		}
	}
}
