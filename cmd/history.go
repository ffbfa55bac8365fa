package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent command executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			return fmt.Errorf("execution history is disabled in the configuration")
		}

		history, err := internal.OpenHistory(cfg.History.File)
		if err != nil {
			return err
		}
		defer func() { _ = history.Close() }()

		results, err := history.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No executions recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			headerStyle.Render("TIME"),
			headerStyle.Render("TOKEN"),
			headerStyle.Render("METHOD"),
			headerStyle.Render("OK"),
			headerStyle.Render("MS"),
			headerStyle.Render("COMMAND"),
		)
		for _, res := range results {
			ok := "no"
			if res.Success {
				ok = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				dateStyle.Render(res.Timestamp.Local().Format("2006-01-02 15:04:05")),
				tokenStyle.Render(res.Token),
				res.Method, ok, res.ExecTimeMS, res.Command,
			)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
