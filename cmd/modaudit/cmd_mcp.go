package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	auditmcp "github.com/ajitpratap0/modaudit/internal/mcp"
	"github.com/ajitpratap0/modaudit/internal/session"
)

func mcpCmd() *cobra.Command {
	var rosterFlag string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  summary         session summary line and counts
  flagged         participants carrying disallowed entries
  lookup          cached result by handle or actor number
  dataset_status  reference dataset source and size
  classify_now    run one classification pass immediately

The audit loop keeps running in the background while the server is up.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			st := dataset.NewStore()
			loader := newLoader(st, nil, logger)
			defer loader.Wait()

			roster := session.NewRoster()
			engine := newEngine(roster, st, loader, nil, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			go func() {
				if err := engine.Run(ctx); err != nil {
					logger.Error("mcp: audit engine stopped", "error", err)
				}
			}()
			if path, err := rosterPath(rosterFlag); err == nil {
				go func() { _ = followRoster(ctx, path, roster, engine, cfg.Audit.CheckInterval, logger) }()
			} else {
				logger.Warn("mcp: no roster file configured; the engine will report not in room")
			}

			srv := auditmcp.NewServer(engine, st, version, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: modaudit MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	cmd.Flags().StringVar(&rosterFlag, "roster", "", "Roster snapshot file (default: session.roster_file)")
	return cmd
}
