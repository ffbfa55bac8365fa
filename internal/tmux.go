package internal

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// runFunc executes a command and returns its stdout and stderr. It is
// a variable on TmuxRunner so tests can script tmux behavior without a
// live server.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

func runCommand(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// TmuxRunner wraps the tmux primitives the dispatcher needs. Callers
// bound each call with a context deadline; on expiry the underlying
// process is killed by exec.CommandContext rather than left running.
type TmuxRunner struct {
	run runFunc
}

// NewTmuxRunner creates a runner that shells out to tmux.
func NewTmuxRunner() *TmuxRunner {
	return &TmuxRunner{run: runCommand}
}

// HasSession reports whether the named tmux session exists.
func (r *TmuxRunner) HasSession(ctx context.Context, name string) bool {
	_, _, err := r.run(ctx, "tmux", "has-session", "-t", name)
	return err == nil
}

// SendKeys types the command into the session followed by Enter. This
// is the primary injection mechanism. Success means tmux accepted the
// keystrokes, not that the injected command succeeded; the target's
// internal outcome is not observable from here.
func (r *TmuxRunner) SendKeys(ctx context.Context, name, command string) error {
	_, stderr, err := r.run(ctx, "tmux", "send-keys", "-t", name, command, "Enter")
	return wrapTmuxError(err, stderr)
}

// SendLegacy injects the command via the older send primitive with an
// explicit carriage return. Used as the fallback when SendKeys fails.
func (r *TmuxRunner) SendLegacy(ctx context.Context, name, command string) error {
	_, stderr, err := r.run(ctx, "tmux", "send", "-t", name, command, "C-m")
	return wrapTmuxError(err, stderr)
}

// CapturePane returns the trailing lines of the session's visible
// output. Output longer than 1000 bytes keeps only the tail.
func (r *TmuxRunner) CapturePane(ctx context.Context, name string, lines int) (string, error) {
	stdout, stderr, err := r.run(ctx, "tmux", "capture-pane", "-t", name, "-p", "-S", "-"+strconv.Itoa(lines))
	if err != nil {
		return "", wrapTmuxError(err, stderr)
	}
	output := strings.TrimSpace(stdout)
	if len(output) > 1000 {
		output = output[len(output)-1000:] + "\n...(output truncated)"
	}
	return output, nil
}

func wrapTmuxError(err error, stderr string) error {
	if err == nil {
		return nil
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return &tmuxError{msg: msg, err: err}
	}
	return err
}

type tmuxError struct {
	msg string
	err error
}

func (e *tmuxError) Error() string { return e.msg }
func (e *tmuxError) Unwrap() error { return e.err }
