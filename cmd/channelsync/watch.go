package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ChannelSync/internal/usecase"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var opts usecase.RunOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run incremental passes on the cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, logger, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := application.Close(context.Background()); cerr != nil {
					logger.Warn("shutdown", "error", cerr)
				}
			}()

			return application.Watch(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "", "only sync this channel key")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max messages per channel (default from config)")
	return cmd
}
