package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// WorkingDirPlaceholder marks a working directory the session creator
// could not resolve; the executor substitutes the process working
// directory at execution time.
const WorkingDirPlaceholder = "{{cwd}}"

type agentRunFunc func(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)

// AgentExecutor invokes an external command-line agent as a one-shot
// subprocess in the session's working directory. This is a distinct
// entry point, not a link in the tmux strategy chain: the agent runs
// the prompt itself instead of injecting keystrokes into a terminal.
type AgentExecutor struct {
	manager   *Manager
	validator *Validator
	clock     Clock
	binary    string
	timeout   time.Duration
	run       agentRunFunc
	history   *HistoryStore
}

// NewAgentExecutor creates an executor that shells out to the given
// agent binary ("claude" in the stock deployment) with a hard timeout.
func NewAgentExecutor(manager *Manager, validator *Validator, clock Clock, binary string) *AgentExecutor {
	if binary == "" {
		binary = "claude"
	}
	return &AgentExecutor{
		manager:   manager,
		validator: validator,
		clock:     clock,
		binary:    binary,
		timeout:   AgentTimeout,
		run:       runAgent,
	}
}

func runAgent(ctx context.Context, dir string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// SetHistory attaches an execution history store. A nil history
// disables recording.
func (a *AgentExecutor) SetHistory(history *HistoryStore) {
	a.history = history
}

// CheckAvailable probes the agent binary. A missing binary is reported
// to the operator at start-up but does not prevent serving; the tmux
// path keeps working.
func (a *AgentExecutor) CheckAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	stdout, _, err := a.run(probeCtx, "", a.binary, "--version")
	if err != nil {
		Logger.Warnf("Agent CLI %q not found or not working: %v", a.binary, err)
		return false
	}
	Logger.Infof("Agent CLI found: %s", strings.TrimSpace(stdout))
	return true
}

// Execute validates the token and command, then runs the agent with
// the command as its prompt in the session's working directory.
func (a *AgentExecutor) Execute(ctx context.Context, token, command string) *ExecutionResult {
	start := a.clock.Now()

	session := a.manager.Validate(token)
	if session == nil {
		return a.finish(&ExecutionResult{
			Token:   token,
			Command: command,
			Method:  MethodFailed,
			Error:   "session validation failed",
		}, start)
	}

	if !a.validator.IsSafe(command) {
		return a.finish(&ExecutionResult{
			Token:   token,
			Command: command,
			Method:  MethodFailed,
			Error:   "command validation failed (dangerous command blocked)",
		}, start)
	}

	result := a.invoke(ctx, command, session.WorkingDir, MethodAgent)
	result.Token = token
	result.Command = command

	if _, err := a.manager.Touch(token); err != nil {
		Logger.Warnf("Failed to touch session %s: %v", token, err)
	}
	return a.finish(result, start)
}

// SendMessage routes a free-form chat message, with no token attached,
// to the owner's most recently active session and runs the agent
// there. Returns a failed result when the owner has no live session.
func (a *AgentExecutor) SendMessage(ctx context.Context, ownerID, message string) *ExecutionResult {
	start := a.clock.Now()

	session := a.manager.MostRecentActiveFor(ownerID)
	if session == nil {
		return a.finish(&ExecutionResult{
			Command: message,
			Method:  MethodFailed,
			Error:   "no active session found for this account; complete a task to obtain a session token first",
		}, start)
	}

	result := a.invoke(ctx, message, session.WorkingDir, MethodAgentAuto)
	result.Token = session.Token
	result.Command = message

	if _, err := a.manager.Touch(session.Token); err != nil {
		Logger.Warnf("Failed to touch session %s: %v", session.Token, err)
	}
	return a.finish(result, start)
}

func (a *AgentExecutor) invoke(ctx context.Context, prompt, workingDir, method string) *ExecutionResult {
	dir := resolveWorkingDir(workingDir)

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	stdout, stderr, err := a.run(runCtx, dir, a.binary, "-p", prompt)

	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return &ExecutionResult{
				Method: MethodFailed,
				Error:  fmt.Sprintf("timeout after %s", a.timeout),
			}
		}
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return &ExecutionResult{
			Method: MethodFailed,
			Error:  "agent CLI error: " + detail,
		}
	}

	output := strings.TrimSpace(stdout)
	if output == "" {
		output = "Command executed successfully"
	}
	return &ExecutionResult{
		Success: true,
		Method:  method,
		Output:  output,
	}
}

func (a *AgentExecutor) finish(result *ExecutionResult, start time.Time) *ExecutionResult {
	result.Timestamp = start
	result.ExecTimeMS = a.clock.Now().Sub(start).Milliseconds()
	if a.history != nil {
		if err := a.history.Record(result); err != nil {
			Logger.Warnf("Failed to record execution history: %v", err)
		}
	}
	return result
}

// resolveWorkingDir substitutes the placeholder or an empty directory
// with the current process working directory.
func resolveWorkingDir(dir string) string {
	if dir == "" || dir == WorkingDirPlaceholder {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return dir
}
