package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/chatrelay/chatrelay/internal"
	"github.com/chatrelay/chatrelay/internal/notify"
	"github.com/chatrelay/chatrelay/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook service",
	Long: `Run the HTTP webhook service that issues session tokens from task
events, relays chat commands to tmux sessions, and sweeps expired
sessions on a timer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		manager := newManager(cfg)
		validator := internal.NewValidator(cfg.Security.MaxCommandLength)
		dispatcher := internal.NewDispatcher(manager, validator, internal.NewTmuxRunner(), internal.SystemClock())
		agent := internal.NewAgentExecutor(manager, validator, internal.SystemClock(), cfg.Agent.Binary)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		agent.CheckAvailable(ctx)

		if cfg.History.Enabled {
			history, err := internal.OpenHistory(cfg.History.File)
			if err != nil {
				internal.Logger.Warnf("Execution history disabled: %v", err)
			} else {
				defer func() { _ = history.Close() }()
				dispatcher.SetHistory(history)
				agent.SetHistory(history)
			}
		}

		whitelist, err := internal.LoadWhitelist(cfg.Security.WhitelistFile)
		if err != nil {
			return err
		}

		var notifier notify.Notifier = notify.LogNotifier{}
		if cfg.Bot.AppID != "" && cfg.Bot.AppSecret != "" {
			notifier = notify.NewFeishuClient(cfg.Bot.AppID, cfg.Bot.AppSecret, cfg.Bot.BaseURL)
		} else {
			internal.Logger.Warn("No bot credentials configured; notifications go to the log only")
		}

		if cfg.Session.CleanupIntervalMinutes > 0 {
			sweeper := internal.NewSweeper(manager, time.Duration(cfg.Session.CleanupIntervalMinutes)*time.Minute)
			go sweeper.Run(ctx)
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		server := web.NewServer(manager, dispatcher, agent, notifier, whitelist)
		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Webhook.Host, cfg.Webhook.Port),
			Handler: server.Router(),
		}

		errCh := make(chan error, 1)
		go func() {
			internal.Logger.Infof("Webhook service listening on %s", httpServer.Addr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			internal.Logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down cleanly: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
