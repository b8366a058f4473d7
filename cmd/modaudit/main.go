package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/modaudit/internal/audit"
	"github.com/ajitpratap0/modaudit/internal/classifier"
	"github.com/ajitpratap0/modaudit/internal/config"
	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/fetcher"
	"github.com/ajitpratap0/modaudit/internal/metrics"
	"github.com/ajitpratap0/modaudit/internal/session"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:     "modaudit",
		Short:   "modaudit: audit session participants' advertised mods against a reference dataset",
		Long:    "modaudit fetches the reference list of known cheats and mods, classifies every participant's public metadata against it and reports disallowed entries once per session.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		fetchCmd(),
		datasetCmd(),
		classifyCmd(),
		watchCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newMetrics registers the collectors on a fresh registry. A disabled config
// yields nil metrics, which every component accepts.
func newMetrics() (*metrics.Metrics, *prometheus.Registry, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil, nil
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, nil, err
	}
	return m, reg, nil
}

func newLoader(st *dataset.Store, m *metrics.Metrics, logger *slog.Logger) *fetcher.Loader {
	return fetcher.NewLoader(st, fetcher.Options{
		URL:          cfg.Dataset.URL,
		Timeout:      cfg.Dataset.Timeout,
		MaxBodyBytes: cfg.Dataset.MaxBodyBytes,
	}, m, logger)
}

func newEngine(roster *session.Roster, st *dataset.Store, loader *fetcher.Loader, m *metrics.Metrics, logger *slog.Logger) *audit.Engine {
	cls := classifier.NewClassifier(st, cfg.Audit.ReservedKeys, logger)
	return audit.NewEngine(roster, cls, audit.Options{
		CheckInterval: cfg.Audit.CheckInterval,
		ManualOnly:    !cfg.Audit.AutoCheck,
		Loader:        loader,
	}, m, logger)
}

// rosterPath resolves the --roster flag against the configured default.
func rosterPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if cfg.Session.RosterFile != "" {
		return cfg.Session.RosterFile, nil
	}
	return "", fmt.Errorf("no roster file: pass --roster or set session.roster_file")
}

// followRoster re-reads the roster file every interval and reports departed
// participants to the engine until ctx is done.
func followRoster(ctx context.Context, path string, roster *session.Roster, engine *audit.Engine, interval time.Duration, logger *slog.Logger) error {
	reload := func() {
		left, err := roster.LoadFile(path)
		if err != nil {
			logger.Warn("roster reload failed", "path", path, "error", err)
			return
		}
		for _, h := range left {
			logger.Info("participant left", "handle", h)
			engine.ParticipantLeft(h)
		}
	}

	reload()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			reload()
		}
	}
}
