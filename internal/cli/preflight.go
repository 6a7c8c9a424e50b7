package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hamed0406/netcheck/internal/storage"
	"github.com/hamed0406/netcheck/internal/sysexec"
)

func (a *app) preflightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check that this machine can run every probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.preflight(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) preflight(ctx context.Context, w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle := r.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle := r.NewStyle().Foreground(lipgloss.Color("9"))

	failed := false
	ok := func(msg string) { fmt.Fprintln(w, okStyle.Render("✔"), msg) }
	warn := func(msg string) { fmt.Fprintln(w, warnStyle.Render("⚠"), msg) }
	fail := func(msg string) {
		failed = true
		fmt.Fprintln(w, failStyle.Render("✖"), msg)
	}

	if sysexec.Available("ping") {
		ok("ping found")
	} else {
		warn("ping not found; Packet Loss will be skipped and MTU Check cannot complete")
	}

	if a.cfg.DisableHTTP {
		warn("HTTP transport disabled; HTTP Response Time and DPI/Throttling Check will be skipped")
	} else {
		ok("HTTP transport enabled")
	}

	if err := checkWritable(a.cfg.LogDir); err != nil {
		fail(fmt.Sprintf("LOG_DIR %s is not writable: %v", a.cfg.LogDir, err))
	} else {
		ok("LOG_DIR=" + a.cfg.LogDir)
	}

	if a.cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; run results are not persisted and serve keeps them in memory")
	} else {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := storage.Open(ctx, a.cfg.DatabaseURL, a.log)
		cancel()
		if err != nil {
			fail("store unreachable: " + err.Error())
		} else {
			_ = store.Close()
			ok("store reachable")
		}
	}

	if a.cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK_URL empty; restricted runs will only be logged")
	} else {
		ok("Slack notifications enabled")
	}

	ok("NETCHECK_ADDR=" + a.cfg.Addr)

	if failed {
		return ErrPreflight
	}
	ok("preflight passed")
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
