package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/models"
)

// datasetDump is the serialized form printed by the dataset command.
type datasetDump struct {
	Source string            `json:"source" yaml:"source"`
	Cheats map[string]string `json:"cheats" yaml:"cheats"`
	Mods   map[string]string `json:"mods" yaml:"mods"`
}

func datasetCmd() *cobra.Command {
	var (
		fallback bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Print the reference tables (remote, or the built-in fallback)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			st := dataset.NewStore()

			if fallback {
				d, p := dataset.Fallback()
				st.ReplaceAll(d, p, models.SourceFallback)
			} else {
				newLoader(st, nil, logger).Load(cmd.Context())
			}

			d, p := st.Tables()
			dump := datasetDump{Source: string(st.Counts().Source), Cheats: d, Mods: p}
			return writeDataset(os.Stdout, dump, format)
		},
	}

	cmd.Flags().BoolVar(&fallback, "fallback", false, "Print the built-in fallback tables without fetching")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	return cmd
}

func writeDataset(w io.Writer, dump datasetDump, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dump)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(dump)
	case "text":
		fmt.Fprintf(w, "Source: %s\n\nKnown cheats (%d):\n", dump.Source, len(dump.Cheats))
		for _, k := range slices.Sorted(maps.Keys(dump.Cheats)) {
			fmt.Fprintf(w, "  %-24s %s\n", k, dump.Cheats[k])
		}
		fmt.Fprintf(w, "\nKnown mods (%d):\n", len(dump.Mods))
		for _, k := range slices.Sorted(maps.Keys(dump.Mods)) {
			fmt.Fprintf(w, "  %-24s %s\n", k, dump.Mods[k])
		}
		return nil
	default:
		return fmt.Errorf("dataset: unknown format %q", format)
	}
}
