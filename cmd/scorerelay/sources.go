package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/choplin/scorerelay/internal/application"
)

func newSourcesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List configured sources and whether their directories are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			statuses := application.InspectSources(cfg)

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), statuses)
			case "table":
				outputSourcesTable(cmd.OutOrStdout(), statuses)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func outputSourcesTable(w io.Writer, statuses []application.SourceStatus) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Name, Status and Files are narrow; give the rest to the directory
	dirWidth := pathWidth(getTerminalWidth(), 45)

	t.AppendHeader(table.Row{"Source", "Directory", "Status", "Files"})
	for _, st := range statuses {
		status := "ok"
		files := fmt.Sprint(st.Candidates)
		if !st.Available {
			status = "unavailable"
			files = "-"
		}
		t.AppendRow(table.Row{st.Name, truncateLeft(st.Directory, dirWidth), status, files})
	}

	t.Render()
}
