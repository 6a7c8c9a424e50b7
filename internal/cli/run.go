package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/battery"
	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/notify"
	"github.com/hamed0406/netcheck/internal/probe"
	"github.com/hamed0406/netcheck/internal/render"
	"github.com/hamed0406/netcheck/internal/report"
	"github.com/hamed0406/netcheck/internal/storage"
)

type runFlags struct {
	json        bool
	format      string
	out         string
	concurrency int
	noHTTP      bool
	store       string
}

func (a *app) runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every probe once and print the verdict",
		Long:  "Runs the probe battery once, prints each result and the overall verdict. Exits 0 when the network is clear and 1 otherwise.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.json, "json", false, "save results to internet_check_<time>.json in the current directory")
	fl.StringVar(&f.format, "format", "json", "report file format: json or yaml")
	fl.StringVar(&f.out, "out", "", "directory to save the report file in")
	fl.IntVar(&f.concurrency, "concurrency", 0, "probes to run at once (overrides NETCHECK_CONCURRENCY)")
	fl.BoolVar(&f.noHTTP, "no-http", false, "run without the HTTP transport; HTTP probes are skipped")
	fl.StringVar(&f.store, "store", "", "save the report to this store (overrides DATABASE_URL)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, f runFlags) error {
	format, err := report.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if f.json {
		format = report.FormatJSON
		if f.out == "" {
			f.out = "."
		}
	}
	concurrency := a.cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = f.concurrency
	}
	dsn := a.cfg.DatabaseURL
	if cmd.Flags().Changed("store") {
		dsn = f.store
	}

	ctx := cmd.Context()
	caps := a.caps(!a.cfg.DisableHTTP && !f.noHTTP)
	console := render.NewConsole(cmd.OutOrStdout())

	console.Header(time.Now())
	b := battery.New(probe.Default(caps),
		battery.WithLogger(a.log),
		battery.WithConcurrency(concurrency),
		battery.WithProgress(func(i int, o domain.Outcome) { console.Outcome(i+1, o) }),
	)
	r, faults := b.Run(ctx)
	if r == nil {
		return faults
	}
	if faults != nil {
		a.log.Warn("run_faults", zap.Error(faults))
	}
	console.Summary(r)

	if f.out != "" {
		path, err := report.WriteFile(f.out, r, format)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", path)
	}

	if dsn != "" {
		id, err := a.save(ctx, dsn, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved as run #%d\n", id)
	}

	if n := a.notifier(); n != nil {
		if _, err := notify.Report(ctx, n, r); err != nil {
			a.log.Warn("notify_failed", zap.Error(err))
		}
	}

	if r.OverallStatus != domain.StatusClear {
		return ErrNotClear
	}
	return nil
}

func (a *app) save(ctx context.Context, dsn string, r *domain.Report) (int64, error) {
	store, err := storage.Open(ctx, dsn, a.log)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	id, err := store.Save(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save to store: %w", err)
	}
	return id, nil
}

// notifier returns the configured notifiers, or nil when there are none.
func (a *app) notifier() notify.Notifier {
	slack := notify.NewSlack(a.cfg.SlackWebhook)
	if slack == nil {
		return nil
	}
	return notify.Multi{slack, notify.Log{Logger: a.log}}
}
