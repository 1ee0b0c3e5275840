package cmd

import (
	"github.com/spf13/cobra"

	"cafestaff/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer rt.close()
			if err := database.Migrate(rt.db); err != nil {
				return err
			}
			rt.log.Info("Database migrated")
			return nil
		},
	}
}
