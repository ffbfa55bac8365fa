package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		removed, err := manager.Delete(args[0])
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		if !removed {
			fmt.Printf("No session with token %s\n", args[0])
			return nil
		}
		fmt.Printf("Deleted session %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
