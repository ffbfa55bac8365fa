package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired sessions from storage",
	Long: `Scan all stored sessions, including ones already invisible to reads,
and delete every session whose expiry has passed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		count, err := manager.SweepExpired()
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		fmt.Printf("Removed %d expired sessions\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
