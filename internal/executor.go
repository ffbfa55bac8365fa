package internal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Execution method names reported in ExecutionResult.Method.
const (
	MethodTmux      = "tmux"
	MethodFallback  = "fallback"
	MethodAgent     = "claude_cli"
	MethodAgentAuto = "claude_cli_auto"
	MethodFailed    = "failed"
)

// Default timeouts for the execution strategies.
const (
	InjectionTimeout    = 30 * time.Second
	AgentTimeout        = 120 * time.Second
	targetCheckTimeout  = 10 * time.Second
	captureTimeout      = 5 * time.Second
	defaultCaptureLines = 10
)

// ExecutionResult is the normalized outcome of one dispatch attempt.
// It is created fresh per call and never persisted beyond the response
// to the caller; recording to the history store is optional.
type ExecutionResult struct {
	Token      string    `json:"token"`
	Command    string    `json:"command"`
	Success    bool      `json:"success"`
	Method     string    `json:"method"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	ExecTimeMS int64     `json:"exec_time_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Strategy is one concrete mechanism for delivering a command to a
// target. Strategies share a uniform signature so the chain can be
// reordered or extended without new control flow.
type Strategy struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context, target, command string) (output string, err error)
}

// Dispatcher validates commands and runs the ordered strategy chain
// against a session's tmux target, stopping at the first success. All
// external-process failures are converted to an ExecutionResult; no
// error escapes Execute.
type Dispatcher struct {
	manager    *Manager
	validator  *Validator
	tmux       *TmuxRunner
	clock      Clock
	strategies []Strategy
	history    *HistoryStore
}

// NewDispatcher creates a dispatcher with the default strategy chain:
// tmux send-keys first, the legacy send primitive as fallback.
func NewDispatcher(manager *Manager, validator *Validator, tmux *TmuxRunner, clock Clock) *Dispatcher {
	d := &Dispatcher{
		manager:   manager,
		validator: validator,
		tmux:      tmux,
		clock:     clock,
	}
	d.strategies = []Strategy{
		{
			Name:    MethodTmux,
			Timeout: InjectionTimeout,
			Run: func(ctx context.Context, target, command string) (string, error) {
				if err := tmux.SendKeys(ctx, target, command); err != nil {
					return "", err
				}
				captureCtx, cancel := context.WithTimeout(context.Background(), captureTimeout)
				defer cancel()
				output, err := tmux.CapturePane(captureCtx, target, defaultCaptureLines)
				if err != nil {
					Logger.Debugf("Failed to capture tmux output: %v", err)
					return "Command sent to tmux session", nil
				}
				if output == "" {
					output = "Command sent to tmux session"
				}
				return output, nil
			},
		},
		{
			Name:    MethodFallback,
			Timeout: InjectionTimeout,
			Run: func(ctx context.Context, target, command string) (string, error) {
				if err := tmux.SendLegacy(ctx, target, command); err != nil {
					return "", err
				}
				return "Command sent using alternative method", nil
			},
		},
	}
	return d
}

// SetHistory attaches an execution history store. A nil history
// disables recording.
func (d *Dispatcher) SetHistory(history *HistoryStore) {
	d.history = history
}

// Execute validates the token and command, then delivers the command
// to the session's target through the strategy chain. The session lock
// is held only for the brief validate and touch calls, never across a
// strategy run, so a slow target does not stall unrelated sessions.
func (d *Dispatcher) Execute(ctx context.Context, token, command string) *ExecutionResult {
	start := d.clock.Now()

	session := d.manager.Validate(token)
	if session == nil {
		return d.finish(&ExecutionResult{
			Token:   token,
			Command: command,
			Method:  MethodFailed,
			Error:   "session validation failed",
		}, start)
	}

	if !d.validator.IsSafe(command) {
		return d.finish(&ExecutionResult{
			Token:   token,
			Command: command,
			Method:  MethodFailed,
			Error:   "command validation failed (dangerous command blocked)",
		}, start)
	}

	result := d.runChain(ctx, session.Target, command)
	result.Token = token
	result.Command = command

	if _, err := d.manager.Touch(token); err != nil {
		Logger.Warnf("Failed to touch session %s: %v", token, err)
	}

	Logger.WithFields(map[string]interface{}{
		"token":   token,
		"method":  result.Method,
		"success": result.Success,
	}).Info("Command dispatched")
	return d.finish(result, start)
}

func (d *Dispatcher) runChain(ctx context.Context, target, command string) *ExecutionResult {
	checkCtx, cancel := context.WithTimeout(ctx, targetCheckTimeout)
	exists := d.tmux.HasSession(checkCtx, target)
	cancel()
	if !exists {
		return &ExecutionResult{
			Method: MethodFailed,
			Error:  fmt.Sprintf("tmux session %q does not exist", target),
		}
	}

	var lastErr string
	for _, strategy := range d.strategies {
		runCtx, cancel := context.WithTimeout(ctx, strategy.Timeout)
		output, err := strategy.Run(runCtx, target, command)
		cancel()
		if err == nil {
			return &ExecutionResult{
				Success: true,
				Method:  strategy.Name,
				Output:  output,
			}
		}
		lastErr = classifyError(err, runCtx, strategy.Timeout)
		Logger.WithFields(map[string]interface{}{
			"strategy": strategy.Name,
			"target":   target,
		}).Warnf("Strategy failed: %s", lastErr)
	}

	return &ExecutionResult{
		Method: MethodFailed,
		Error:  "all execution methods failed: " + lastErr,
	}
}

func (d *Dispatcher) finish(result *ExecutionResult, start time.Time) *ExecutionResult {
	result.Timestamp = start
	result.ExecTimeMS = d.clock.Now().Sub(start).Milliseconds()
	if d.history != nil {
		if err := d.history.Record(result); err != nil {
			Logger.Warnf("Failed to record execution history: %v", err)
		}
	}
	return result
}

// classifyError distinguishes a deadline hit from an ordinary failure
// so callers can tell a hung target from a rejected injection.
func classifyError(err error, ctx context.Context, timeout time.Duration) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout after %s", timeout)
	}
	return err.Error()
}
