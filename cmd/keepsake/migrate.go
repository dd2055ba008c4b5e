package main

import (
	"errors"

	"github.com/spf13/cobra"

	"keepsake/internal/platform/postgres"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database.url is required")
			}
			return postgres.Migrate(cfg.Database.URL, ctx.logger)
		},
	}
}
