package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/database"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators",
	}
	cmd.AddCommand(newAdminCreateCmd())
	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var name, password, fullName, email string

	c := &cobra.Command{
		Use:   "create",
		Short: "Add an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			admin, err := database.CreateAdmin(db, name, password, fullName, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %q (id=%d)\n", admin.Name, admin.ID)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "login name")
	c.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	c.Flags().StringVar(&fullName, "full-name", "", "display name")
	c.Flags().StringVar(&email, "email", "", "email address")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("password")
	_ = c.MarkFlagRequired("email")
	return c
}
