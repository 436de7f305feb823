package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-gateway/pkg/gateway/config"
)

type rootFlags struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "gateway",
		Short:         "HTTP gateway for news records and image objects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML, JSON, TOML or .env config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(flags),
		newMigrateCmd(flags),
		newConfigCmd(),
	)

	return cmd
}

// load reads configuration from the optional file and the environment,
// then installs the process logger.
func (f *rootFlags) load() (*config.ServerConfig, *slog.Logger, error) {
	opts := []config.Option{config.WithEnv()}
	if f.configFile != "" {
		opts = []config.Option{config.WithFile(f.configFile)}
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
