package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/netcheck/internal/battery"
	"github.com/hamed0406/netcheck/internal/domain"
	"github.com/hamed0406/netcheck/internal/httpapi"
	apimw "github.com/hamed0406/netcheck/internal/httpapi/middleware"
	"github.com/hamed0406/netcheck/internal/probe"
	"github.com/hamed0406/netcheck/internal/storage"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API for on-demand runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides NETCHECK_ADDR)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	trusted, err := apimw.ParseTrustedProxies(a.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	store, err := storage.Open(ctx, a.cfg.DatabaseURL, a.log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	caps := a.caps(!a.cfg.DisableHTTP)
	run := func(ctx context.Context) (*domain.Report, error) {
		return battery.New(probe.Default(caps),
			battery.WithLogger(a.log),
			battery.WithConcurrency(a.cfg.Concurrency),
		).Run(ctx)
	}

	api := httpapi.NewServer(a.log, store, run)
	api.RunRPM, api.RunBurst = a.cfg.RunRPM, a.cfg.RunBurst
	api.TrustedProxies = trusted
	if n := a.notifier(); n != nil {
		api.Notifier = n
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("api_listen", zap.String("addr", a.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("api_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
