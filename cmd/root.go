package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatrelay",
	Short: "Remote control token broker for tmux sessions",
	Long: `chatrelay brokers short-lived session tokens that let a chat user
drive a tmux session (or a one-shot CLI agent) remotely.

An automation hook posts a task event to the webhook service, which
issues a token and delivers it to the task owner over chat. The owner
then replies with <token>:<command> to run commands in the original
tmux session, with expiry and per-owner limits enforced by the broker.

Quick Start:
  chatrelay serve                      # Run the webhook service
  chatrelay create --target ws1        # Issue a session token by hand
  chatrelay list                       # List live sessions
  chatrelay exec 'ABCD2345:ls -la'     # Dispatch a command`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the configuration file")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig loads the configuration file named by --config and applies
// the configured log level unless --verbose already raised it.
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if !verbose && cfg.Logging.Level != "" {
		if err := internal.SetLogLevel(cfg.Logging.Level); err != nil {
			internal.Logger.Warnf("Invalid log level %q: %v", cfg.Logging.Level, err)
		}
	}
	return cfg, nil
}

// newManager builds the session manager from configuration.
func newManager(cfg *internal.Config) *internal.Manager {
	store := internal.NewFileStore(cfg.Session.StorageFile)
	return internal.NewManager(store, internal.SystemClock(), internal.ManagerConfig{
		TokenLength:         cfg.Session.TokenLength,
		TTL:                 time.Duration(cfg.Session.ExpirationHours) * time.Hour,
		MaxSessionsPerOwner: cfg.Session.MaxSessionsPerOwner,
	})
}
