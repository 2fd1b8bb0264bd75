package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(database.Models()))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample restaurants and the default admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			n, err := database.SeedRestaurants(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d restaurants\n", n)

			if cfg.AdminPassword == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ADMIN_PASSWORD not set, skipping default admin")
				return nil
			}
			created, err := database.EnsureAdmin(db, cfg.AdminName, cfg.AdminPassword, cfg.AdminEmail)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %q\n", cfg.AdminName)
			}
			return nil
		},
	}
}
