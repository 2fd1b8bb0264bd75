package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/reports"
	"gorm.io/gorm"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export data as CSV",
	}
	cmd.AddCommand(newExportUsersCmd())
	return cmd
}

func newExportUsersCmd() *cobra.Command {
	var out string

	c := &cobra.Command{
		Use:   "users",
		Short: "Write every customer as username,email,phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeDB(db)

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			n, err := exportUsers(db, w)
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d customers to %s\n", n, out)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&out, "out", "o", "users.csv", `output file, "-" for stdout`)
	return c
}

func exportUsers(db *gorm.DB, w io.Writer) (int, error) {
	var customers []models.Customer
	if err := db.Order("id ASC").Find(&customers).Error; err != nil {
		return 0, fmt.Errorf("failed to load customers: %w", err)
	}

	rows := make([]reports.UserRow, len(customers))
	for i, c := range customers {
		rows[i] = reports.UserRow{Username: c.Username, Email: c.Email}
		if c.Phone != nil {
			rows[i].Phone = *c.Phone
		}
	}
	return len(rows), reports.WriteUsersCSV(w, rows)
}
