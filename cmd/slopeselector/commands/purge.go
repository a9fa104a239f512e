package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete recommendation history older than --days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if purgeDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}
		application, err := loadApp()
		if err != nil {
			return err
		}
		defer application.Release()

		n, err := application.PurgeExpired(purgeDays)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d recommendation sets\n", n)
		return nil
	},
}

func init() {
	purgeCmd.Flags().IntVar(&purgeDays, "days", 90, "Keep history of the last N days")
	rootCmd.AddCommand(purgeCmd)
}
