// Package cli wires configuration, logging, probes and storage into the
// netcheck command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/config"
	"github.com/hamed0406/netcheck/internal/logging"
	"github.com/hamed0406/netcheck/internal/probe"
)

var Version = "dev"

var (
	// ErrNotClear is returned by run when the verdict is not clear.
	ErrNotClear = errors.New("network is not clear")
	// ErrPreflight is returned by preflight when a required check fails.
	ErrPreflight = errors.New("preflight failed")
)

const (
	ExitClear    = 0
	ExitNotClear = 1
	ExitSetup    = 2
)

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitClear
	case errors.Is(err, ErrNotClear), errors.Is(err, ErrPreflight):
		return ExitNotClear
	}
	return ExitSetup
}

type app struct {
	cfg      config.Config
	log      *zap.Logger
	envFile  string
	logLevel string
	caps     func(httpEnabled bool) probe.Capabilities
}

type option func(*app)

func withCapabilities(fn func(bool) probe.Capabilities) option {
	return func(a *app) { a.caps = fn }
}

func withLogger(l *zap.Logger) option {
	return func(a *app) { a.log = l }
}

func newRootCmd(opts ...option) *cobra.Command {
	a := &app{caps: probe.DefaultCapabilities}
	for _, o := range opts {
		o(a)
	}

	root := &cobra.Command{
		Use:           "netcheck",
		Short:         "Diagnose internet restrictions from this machine",
		Long:          "netcheck runs a fixed battery of DNS, TCP, HTTP and ICMP probes and reports whether the network looks clear, partially restricted or restricted.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load (missing file is ignored)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(a.runCmd(), a.serveCmd(), a.preflightCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	a.cfg = config.FromEnv()
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	if a.log != nil {
		return nil
	}
	l, err := logging.NewLogger(a.cfg.LogDir, a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = l
	return nil
}

// Execute runs the command line and returns the exit status.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newRootCmd(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrNotClear) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return ExitCode(err)
}
