package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/modaudit/internal/api"
	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/session"
)

func serveCmd() *cobra.Command {
	var rosterFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the audit loop and expose results over an HTTP/JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			m, reg, err := newMetrics()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			st := dataset.NewStore()
			loader := newLoader(st, m, logger)
			defer loader.Wait()

			roster := session.NewRoster()
			engine := newEngine(roster, st, loader, m, logger)

			var gatherer prometheus.Gatherer
			if reg != nil {
				gatherer = reg
			}
			srv := api.NewServer(engine, st, gatherer, logger, cfg.API.AuthToken)

			if cfg.API.AuthToken == "" {
				logger.Warn("HTTP API: auth is DISABLED; set MODAUDIT_API_AUTH_TOKEN or api.auth_token for production use")
			}

			httpSrv := &http.Server{
				Addr:              cfg.API.ListenAddr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return engine.Run(ctx) })

			if path, pathErr := rosterPath(rosterFlag); pathErr == nil {
				g.Go(func() error {
					return followRoster(ctx, path, roster, engine, cfg.Audit.CheckInterval, logger)
				})
			} else {
				logger.Warn("no roster file configured; the engine will report not in room")
			}

			g.Go(func() error {
				logger.Info("HTTP API server starting", "addr", cfg.API.ListenAddr)
				if listenErr := httpSrv.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
					return fmt.Errorf("serve: HTTP server: %w", listenErr)
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				logger.Info("shutting down")
				const shutdownTimeout = 10 * time.Second
				if shutdownErr := api.Shutdown(httpSrv, shutdownTimeout); shutdownErr != nil {
					return fmt.Errorf("serve: graceful shutdown: %w", shutdownErr)
				}
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterFlag, "roster", "", "Roster snapshot file (default: session.roster_file)")
	return cmd
}
