package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
)

var sendOwner string

var sendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send a free-form message to an owner's most recent session",
	Long: `Route a message with no token attached the way the chat front end
does: the owner's most recently active live session is resolved and
the message runs through the one-shot CLI agent in that session's
working directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		validator := internal.NewValidator(cfg.Security.MaxCommandLength)
		agent := internal.NewAgentExecutor(manager, validator, internal.SystemClock(), cfg.Agent.Binary)

		result := agent.SendMessage(cmd.Context(), sendOwner, args[0])
		printResult(result)
		if !result.Success {
			return fmt.Errorf("execution failed")
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendOwner, "owner", "", "Chat identity whose session receives the message")
	_ = sendCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(sendCmd)
}
