package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
)

type recorder struct {
	titles []string
	texts  []string
	err    error
}

func (r *recorder) Send(_ context.Context, title, text string) error {
	r.titles = append(r.titles, title)
	r.texts = append(r.texts, text)
	return r.err
}

func TestMulti_SendsToAllAndCombinesErrors(t *testing.T) {
	a := &recorder{err: errors.New("a down")}
	b := &recorder{}
	c := &recorder{err: errors.New("c down")}

	err := Multi{a, nil, b, c, Log{Logger: zap.NewNop()}}.Send(context.Background(), "T", "x")
	if len(a.titles) != 1 || len(b.titles) != 1 || len(c.titles) != 1 {
		t.Fatalf("every notifier should be called")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("want 2 combined errors, got %d (%v)", n, err)
	}
}

func TestReport_SkipsClear(t *testing.T) {
	rec := &recorder{}
	ts := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)

	sent, err := Report(context.Background(), rec, domain.Restore(ts, []domain.Outcome{domain.Pass("a", "")}))
	if sent || err != nil || len(rec.titles) != 0 {
		t.Fatalf("clear run must not notify: sent=%v err=%v", sent, err)
	}

	outcomes := []domain.Outcome{domain.Pass("a", ""), domain.Fail("Port Connectivity", "Some ports are blocked: github.com:22 (SSH)")}
	sent, err = Report(context.Background(), rec, domain.Restore(ts, outcomes))
	if !sent || err != nil {
		t.Fatalf("sent=%v err=%v", sent, err)
	}
	if rec.titles[0] != "Network check: Restricted (1/2)" {
		t.Fatalf("title=%q", rec.titles[0])
	}
	if !strings.Contains(rec.texts[0], "Port Connectivity: Some ports are blocked") {
		t.Fatalf("text=%q", rec.texts[0])
	}
}
