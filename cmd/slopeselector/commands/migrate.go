package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/talkincode/slopeselector/internal/app"
)

var dropTables bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update every table and seed the default store rules.
With --drop all tables are dropped first, deleting every stored recommendation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := loadApp()
		if err != nil {
			return err
		}
		defer application.Release()

		if dropTables {
			err = application.ResetDB()
		} else {
			err = application.MigrateDB(true)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated tables: %s\n", strings.Join(app.Tables(), ", "))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&dropTables, "drop", false, "Drop all tables before migrating")
	rootCmd.AddCommand(migrateCmd)
}
