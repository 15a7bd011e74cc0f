package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/choplin/scorerelay/internal/application"
	"github.com/choplin/scorerelay/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long:  "Start a Model Context Protocol server exposing scan passes and source status over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			relay, cleanup, err := openRelay(application.Options{})
			if err != nil {
				return err
			}
			defer cleanup()

			server := mcp.NewServer(relay, version)
			return server.Run(context.Background())
		},
	}

	return cmd
}
