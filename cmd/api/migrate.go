package main

import (
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/db"
	"github.com/spf13/cobra"
)

func (a *app) migrateCommand() *cobra.Command {
	var rollback int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.StorageDriver != config.DriverPostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=postgres, got %q", a.cfg.StorageDriver)
			}
			logger := a.logger.Named("db")
			if rollback > 0 {
				return db.RollbackMigrations(a.cfg.DatabaseURL, rollback, logger)
			}
			return db.RunMigrations(a.cfg.DatabaseURL, logger)
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "roll back this many migrations instead of applying")
	return cmd
}
