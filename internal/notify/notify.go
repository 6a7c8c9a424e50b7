package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/render"
)

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi sends to every notifier and combines their errors.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, title, text))
	}
	return err
}

// Log records notifications in the application log.
type Log struct{ Logger *zap.Logger }

func (l Log) Send(_ context.Context, title, text string) error {
	l.Logger.Warn("notification", zap.String("title", title), zap.String("text", text))
	return nil
}

// Report notifies about a run unless its verdict is clear. It reports
// whether anything was sent.
func Report(ctx context.Context, n Notifier, r *domain.Report) (bool, error) {
	if n == nil || r.OverallStatus == domain.StatusClear {
		return false, nil
	}
	passed, total := r.Passed()
	title := fmt.Sprintf("Network check: %s (%d/%d)", r.OverallStatus.Title(), passed, total)
	return true, n.Send(ctx, title, render.Plain(r))
}
