package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listOwner string

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	tokenStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live sessions",
	Long:  `List live (non-expired) sessions, optionally filtered by owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		sessions := manager.List(listOwner)
		if len(sessions) == 0 {
			fmt.Println("No live sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			headerStyle.Render("TOKEN"),
			headerStyle.Render("OWNER"),
			headerStyle.Render("TARGET"),
			headerStyle.Render("STATUS"),
			headerStyle.Render("LAST ACTIVE"),
			headerStyle.Render("EXPIRES"),
		)
		for _, sess := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tokenStyle.Render(sess.Token),
				sess.OwnerID,
				targetStyle.Render(sess.Target),
				statusStyle.Render(sess.Status),
				dateStyle.Render(formatAge(sess.LastActiveAt)),
				dateStyle.Render(sess.ExpiresAt.Format("2006-01-02 15:04")),
			)
		}
		return w.Flush()
	},
}

// formatAge renders a timestamp as a relative age, falling back to the
// date for anything older than a day.
func formatAge(ts time.Time) string {
	age := time.Since(ts)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return ts.Format("2006-01-02 15:04")
	}
}

func init() {
	listCmd.Flags().StringVar(&listOwner, "owner", "", "Only list sessions for this owner")
	rootCmd.AddCommand(listCmd)
}
