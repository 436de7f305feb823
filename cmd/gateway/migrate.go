package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the news schema in the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}

			rel, err := cfg.OpenRelational(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open relational store: %w", err)
			}
			defer rel.Close()

			if err := rel.Migrator.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("Schema is up to date", "database", redactedDatabase(cfg.DatabaseURL))
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
