package cmd

import (
	"github.com/spf13/cobra"

	"cafestaff/database"
	"cafestaff/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all data with the demo cafes and employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := database.Migrate(rt.db); err != nil {
				return err
			}
			sum, err := seed.Run(cmd.Context(), rt.db, nil)
			if err != nil {
				return err
			}
			rt.log.Info("Database seeding completed", "cafes", sum.Cafes, "employees", sum.Employees, "assignments", sum.Assignments)
			return nil
		},
	}
}
