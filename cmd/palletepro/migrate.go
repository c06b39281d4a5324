package main

import (
	"github.com/spf13/cobra"

	"github.com/palletepro/palletepro/internal/store/postgres"
)

func newMigrateCmd(envFiles *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			pool, err := connectPostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(cmd.Context(), pool, cfg.Postgres, log); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "migrations applied")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			pool, err := connectPostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return postgres.Status(cmd.Context(), pool, cfg.Postgres, log)
		},
	})
	return cmd
}
