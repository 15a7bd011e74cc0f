package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/choplin/scorerelay/internal/application"
)

func newRunCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan now, then keep scanning on a fixed interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			relay, cleanup, err := openRelay(application.Options{Interval: interval})
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			relay.Logger.Info("score relay started",
				zap.String("endpoint", relay.Config.APIEndpoint),
				zap.Int("sources", len(relay.Config.Sources)),
				zap.Duration("interval", relay.Scheduler.Interval),
			)

			err = relay.Scheduler.Run(ctx)
			if errors.Is(err, context.Canceled) {
				relay.Logger.Info("score relay stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Override the scan interval from the config file (e.g. 5m)")

	return cmd
}
