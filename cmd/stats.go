package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show session storage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		stats := manager.Stats()

		fmt.Printf("Stored sessions: %d (%d live, %d expired)\n", stats.Total, stats.Live, stats.Expired)
		statuses := make([]string, 0, len(stats.ByStatus))
		for status := range stats.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			fmt.Printf("  %s: %d\n", status, stats.ByStatus[status])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
