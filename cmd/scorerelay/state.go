package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/choplin/scorerelay/internal/database"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset the persisted fingerprint store",
	}

	cmd.AddCommand(newStateListCmd())
	cmd.AddCommand(newStateForgetCmd())
	cmd.AddCommand(newStateClearCmd())

	return cmd
}

// openState opens the configured fingerprint store even when persistence is
// disabled, so that a stale store can still be inspected or cleared.
func openState() (*database.Context, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.CreateDatabase(cfg.State.Path)
}

func newStateListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded file fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			dbCtx, err := openState()
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDatabase(dbCtx) }()

			records, err := database.NewFingerprintRepository(dbCtx).FindAll(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list fingerprints: %w", err)
			}

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No fingerprints recorded")
				return nil
			}
			outputStateTable(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func newStateForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <path>...",
		Short: "Forget the fingerprint of specific files so they are uploaded again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCtx, err := openState()
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDatabase(dbCtx) }()

			repo := database.NewFingerprintRepository(dbCtx)
			for _, path := range args {
				deleted, err := repo.Delete(context.Background(), path)
				if err != nil {
					return fmt.Errorf("failed to forget %s: %w", path, err)
				}
				if !deleted {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No fingerprint for %s\n", path)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", path)
			}
			return nil
		},
	}
}

func newStateClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCtx, err := openState()
			if err != nil {
				return err
			}
			defer func() { _ = database.CloseDatabase(dbCtx) }()

			n, err := database.ClearDatabase(dbCtx)
			if err != nil {
				return fmt.Errorf("failed to clear fingerprints: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d fingerprint(s)\n", n)
			return nil
		},
	}
}

func outputStateTable(w io.Writer, records []database.FingerprintRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// two RFC3339 timestamps plus borders
	width := pathWidth(getTerminalWidth(), 60)

	t.AppendHeader(table.Row{"Path", "Modified", "Recorded"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			truncateLeft(rec.Path, width),
			rec.ModTime.Local().Format(time.RFC3339),
			rec.UpdatedAt.Local().Format(time.RFC3339),
		})
	}

	t.Render()
}
