package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
)

var (
	createOwner       string
	createSubject     string
	createTarget      string
	createWorkingDir  string
	createDescription string
	createStatus      string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new session token",
	Long: `Issue a session token by hand, bypassing the webhook front end.
Useful for wiring up a session before the automation hooks exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		session, err := manager.Create(createOwner, createSubject, createTarget, createWorkingDir, createDescription, createStatus)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		fmt.Printf("Token:   %s\n", session.Token)
		fmt.Printf("Target:  %s\n", session.Target)
		fmt.Printf("Expires: %s\n", session.ExpiresAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createOwner, "owner", "", "Chat identity that owns the token")
	createCmd.Flags().StringVar(&createSubject, "subject", "", "Automation principal the session belongs to")
	createCmd.Flags().StringVar(&createTarget, "target", "", "Tmux session name to execute commands in")
	createCmd.Flags().StringVar(&createWorkingDir, "dir", "", "Working directory for agent execution")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Human-readable session description")
	createCmd.Flags().StringVar(&createStatus, "status", internal.StatusActive, "Initial session status")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(createCmd)
}
