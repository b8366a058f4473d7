package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/modaudit/internal/dataset"
)

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Load the reference dataset once and report where it came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			st := dataset.NewStore()
			loader := newLoader(st, nil, logger)

			o := loader.Load(cmd.Context())
			counts := st.Counts()

			fmt.Printf("Source: %s\n", counts.Source)
			fmt.Printf("Known cheats: %d\n", counts.Disallowed)
			fmt.Printf("Known mods:   %d\n", counts.Permitted)
			if o.Err != nil {
				fmt.Printf("Remote error: %v\n", o.Err)
			}
			return nil
		},
	}
}
