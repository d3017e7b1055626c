package main

import (
	"fmt"

	"github.com/Marga-Ghale/ora-committee-backend/internal/config"
	"github.com/Marga-Ghale/ora-committee-backend/internal/seed"
	"github.com/Marga-Ghale/ora-committee-backend/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo users, a committee and motions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.IsProduction() {
				return fmt.Errorf("refusing to seed a production environment")
			}
			if a.cfg.StorageDriver == config.DriverMemory {
				return fmt.Errorf("the memory store does not persist, use serve --seed")
			}

			store, err := a.openStorage(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer store.close()

			services := service.NewServices(&service.ServiceDeps{
				Config: a.cfg,
				Repos:  store.repos,
				Logger: a.logger,
			})
			return seed.SeedData(cmd.Context(), services, store.repos.UserRepo, a.logger.Named("seed"))
		},
	}
}
