package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
)

var execAgent bool

var execCmd = &cobra.Command{
	Use:   "exec '<token>:<command>'",
	Short: "Dispatch a command to a session's target",
	Long: `Dispatch a command exactly the way an inbound chat message would be:
the argument is split on the first colon into token and command, the
token is validated, and the command runs against the session's tmux
target through the ordered strategy chain.

With --agent the command is handed to the one-shot CLI agent in the
session's working directory instead of being typed into tmux.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token, command, ok := internal.ParseRemoteCommand(args[0])
		if !ok {
			return fmt.Errorf("expected '<token>:<command>', got %q", args[0])
		}

		manager := newManager(cfg)
		validator := internal.NewValidator(cfg.Security.MaxCommandLength)

		var result *internal.ExecutionResult
		if execAgent {
			agent := internal.NewAgentExecutor(manager, validator, internal.SystemClock(), cfg.Agent.Binary)
			result = agent.Execute(cmd.Context(), token, command)
		} else {
			dispatcher := internal.NewDispatcher(manager, validator, internal.NewTmuxRunner(), internal.SystemClock())
			result = dispatcher.Execute(cmd.Context(), token, command)
		}

		printResult(result)
		if !result.Success {
			return fmt.Errorf("execution failed")
		}
		return nil
	},
}

func printResult(result *internal.ExecutionResult) {
	if result.Success {
		fmt.Printf("OK (%s, %dms)\n", result.Method, result.ExecTimeMS)
		if result.Output != "" {
			fmt.Println(result.Output)
		}
		return
	}
	fmt.Printf("FAILED (%dms): %s\n", result.ExecTimeMS, result.Error)
}

func init() {
	execCmd.Flags().BoolVar(&execAgent, "agent", false, "Run through the one-shot CLI agent instead of tmux")
	rootCmd.AddCommand(execCmd)
}
