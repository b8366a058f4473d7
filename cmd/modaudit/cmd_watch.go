package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/session"
)

func watchCmd() *cobra.Command {
	var rosterFlag string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the audit loop against a roster file and print detections as they fire",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			path, err := rosterPath(rosterFlag)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			st := dataset.NewStore()
			loader := newLoader(st, nil, logger)
			defer loader.Wait()

			roster := session.NewRoster()
			engine := newEngine(roster, st, loader, nil, logger)

			g, ctx := errgroup.WithContext(cmd.Context())
			events := engine.Events(ctx, 16)

			g.Go(func() error { return engine.Run(ctx) })
			g.Go(func() error {
				return followRoster(ctx, path, roster, engine, cfg.Audit.CheckInterval, logger)
			})
			g.Go(func() error {
				for ev := range events {
					fmt.Printf("%s  %s  %s (%s): %s\n",
						ev.DetectedAt.Format("15:04:05"), ev.Session, ev.Result.DisplayName, ev.UserID,
						strings.Join(ev.Result.Disallowed, ", "))
				}
				return nil
			})

			fmt.Printf("Watching %s (every %s, ctrl-c to stop)\n", path, cfg.Audit.CheckInterval)
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("watch: %w", err)
			}
			fmt.Println(engine.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterFlag, "roster", "", "Roster snapshot file (default: session.roster_file)")
	return cmd
}
