package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ChannelSync/internal/usecase"
)

func newSyncCmd(root *rootOptions) *cobra.Command {
	var opts usecase.RunOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass",
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

			report, err := application.Sync(ctx, opts)
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.Full, "full", false, "refetch all messages and delete orphaned articles")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "only sync this channel key")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max messages per channel (default from config)")
	return cmd
}
