package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ChannelSync/internal/app"
	"ChannelSync/internal/config"
	"ChannelSync/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "channelsync",
		Short: "Turn channel posts into articles and keep them in sync",
		Long: `channelsync reads public channel posts, groups multi-part posts, builds
articles from them and keeps the article table in sync.

Example usage:
  channelsync sync                 # incremental pass over all channels
  channelsync sync --full          # rebuild everything and delete orphans
  channelsync sync --channel ar    # one channel only
  channelsync watch                # run on the configured cron schedule`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.PathEnv+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newSyncCmd(opts), newWatchCmd(opts))
	return cmd
}

// setup loads and validates config, then connects the application.
func (o *rootOptions) setup(ctx context.Context) (*app.Application, *slog.Logger, error) {
	if o.configPath != "" {
		if err := os.Setenv(config.PathEnv, o.configPath); err != nil {
			return nil, nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg := config.Load()
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
