package cmd

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/ttahub/ttahub/internal/config"
	"github.com/ttahub/ttahub/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations", db.RunMigrations))
	cmd.AddCommand(migrateStep("down", "Roll back the last migration", db.MigrateDown))
	cmd.AddCommand(migrateStep("status", "Show applied and pending migrations", db.MigrationStatus))
	return cmd
}

func migrateStep(use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer db.Close(database)

			return run(database.DB, cfg.DBDriver)
		},
	}
}
