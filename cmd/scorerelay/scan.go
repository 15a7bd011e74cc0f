package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/choplin/scorerelay/internal/application"
	"github.com/choplin/scorerelay/internal/scan"
	"github.com/choplin/scorerelay/internal/schedule"
)

func newScanCmd() *cobra.Command {
	var (
		format string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan pass and print what happened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			relay, cleanup, err := openRelay(application.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			defer cleanup()

			rep := relay.Scheduler.RunOnce(context.Background())

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), scanOutput{
					PassReport: rep,
					DryRun:     dryRun,
					Summary:    rep.Summaries(),
				})
			}
			outputScanTable(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse score files without uploading or recording them")

	return cmd
}

type scanOutput struct {
	schedule.PassReport
	DryRun  bool           `json:"dry_run"`
	Summary []scan.Summary `json:"summary"`
}

func outputScanTable(w io.Writer, rep schedule.PassReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("pass %s (%s)", rep.ID, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond)))

	t.AppendHeader(table.Row{"Source", "Status", "Files", "Unchanged", "Processed", "Failed", "Records", "Accepted", "Rejected", "Errors"})

	var total scan.Summary
	for _, s := range rep.Summaries() {
		status := "ok"
		if !s.Available {
			status = "unavailable"
		}
		t.AppendRow(table.Row{s.Source, status, s.Files, s.Unchanged, s.Processed, s.Failed, s.Records, s.Accepted, s.Rejected, s.TransportFailures})

		total.Files += s.Files
		total.Unchanged += s.Unchanged
		total.Processed += s.Processed
		total.Failed += s.Failed
		total.Records += s.Records
		total.Accepted += s.Accepted
		total.Rejected += s.Rejected
		total.TransportFailures += s.TransportFailures
	}
	t.AppendFooter(table.Row{"Total", "", total.Files, total.Unchanged, total.Processed, total.Failed, total.Records, total.Accepted, total.Rejected, total.TransportFailures})

	t.Render()
}
