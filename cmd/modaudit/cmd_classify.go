package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/session"
)

func classifyCmd() *cobra.Command {
	var (
		rosterFlag string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every participant in a roster snapshot once",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			path, err := rosterPath(rosterFlag)
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}
			roster := session.NewRoster()
			if _, err := roster.LoadFile(path); err != nil {
				return fmt.Errorf("classify: %w", err)
			}

			st := dataset.NewStore()
			newLoader(st, nil, logger).Load(cmd.Context())

			engine := newEngine(roster, st, nil, nil, logger)
			engine.Tick()

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(engine.Results())
			}

			for _, r := range engine.Results() {
				fmt.Printf("%-14s %-20s %s\n", r.StatusText(), truncate(r.DisplayName, 20), r.FormatEntries())
			}
			fmt.Println(engine.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&rosterFlag, "roster", "", "Roster snapshot file (default: session.roster_file)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	return cmd
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
