package battery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/probe"
)

type Battery struct {
	Probes      []probe.Probe
	Logger      *zap.Logger
	Concurrency int
	Now         func() time.Time
	OnOutcome   func(index int, o domain.Outcome)
}

type Option func(*Battery)

// WithConcurrency lets up to n probes run at once. The report keeps the
// declaration order either way.
func WithConcurrency(n int) Option { return func(b *Battery) { b.Concurrency = n } }

func WithLogger(l *zap.Logger) Option { return func(b *Battery) { b.Logger = l } }

func WithClock(now func() time.Time) Option { return func(b *Battery) { b.Now = now } }

// WithProgress calls fn once per probe, in declaration order. Sequential
// runs call it as each probe finishes; concurrent runs call it after all
// probes are done.
func WithProgress(fn func(index int, o domain.Outcome)) Option {
	return func(b *Battery) { b.OnOutcome = fn }
}

func New(probes []probe.Probe, opts ...Option) *Battery {
	b := &Battery{
		Probes:      probes,
		Logger:      zap.NewNop(),
		Concurrency: 1,
		Now:         func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(b)
	}
	if b.Concurrency < 1 {
		b.Concurrency = 1
	}
	return b
}

// Run executes every probe and returns the finalized report. No probe
// failure or fault stops the run. The error combines probe faults, each of
// which is already recorded in the report as a failing outcome; callers
// should log it, not abort on it.
func (b *Battery) Run(ctx context.Context) (*domain.Report, error) {
	report := domain.NewReport(b.Now())
	outcomes := make([]domain.Outcome, len(b.Probes))
	faults := make([]error, len(b.Probes))

	if b.Concurrency == 1 {
		for i, p := range b.Probes {
			outcomes[i], faults[i] = b.runOne(ctx, p)
			b.progress(i, outcomes[i])
		}
	} else {
		sem := make(chan struct{}, b.Concurrency)
		var wg sync.WaitGroup
		for i, p := range b.Probes {
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer func() { <-sem }()
				defer wg.Done()
				outcomes[i], faults[i] = b.runOne(ctx, p)
			}()
		}
		wg.Wait()
		for i, o := range outcomes {
			b.progress(i, o)
		}
	}

	for _, o := range outcomes {
		if err := report.Append(o); err != nil {
			return nil, err
		}
	}
	report.Finalize()

	passed, total := report.Passed()
	b.Logger.Info("battery_finished",
		zap.String("overall_status", string(report.OverallStatus)),
		zap.Int("passed", passed),
		zap.Int("total", total),
		zap.Strings("issues", report.Issues),
	)
	return report, multierr.Combine(faults...)
}

func (b *Battery) progress(i int, o domain.Outcome) {
	if b.OnOutcome != nil {
		b.OnOutcome(i, o)
	}
}

// runOne runs a single probe, converting errors and panics into a failing
// outcome under the probe's name.
func (b *Battery) runOne(ctx context.Context, p probe.Probe) (out domain.Outcome, fault error) {
	name := p.Name()
	start := time.Now()
	b.Logger.Debug("probe_started", zap.String("probe", name))

	defer func() {
		if r := recover(); r != nil {
			fault = fmt.Errorf("probe %q panicked: %v", name, r)
		}
		if fault != nil {
			out = domain.Fail(name, "unexpected error: "+fault.Error())
			b.Logger.Warn("probe_fault", zap.String("probe", name), zap.Error(fault))
		}
		b.Logger.Info("probe_finished",
			zap.String("probe", name),
			zap.Bool("passed", out.Passed),
			zap.String("detail", out.Detail),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	out, fault = p.Run(ctx)
	if fault == nil && out.Name == "" {
		out.Name = name
	}
	if fault != nil {
		fault = fmt.Errorf("%s: %w", name, fault)
	}
	return out, fault
}
