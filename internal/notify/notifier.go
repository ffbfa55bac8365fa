package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatrelay/chatrelay/internal"
)

// Notifier delivers a text message to a chat recipient. The broker
// never assumes delivery succeeded beyond the returned error.
type Notifier interface {
	Notify(ctx context.Context, recipient, text string) error
}

// LogNotifier writes notifications to the log instead of a chat
// platform. Used when no bot credentials are configured and in tests.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, recipient, text string) error {
	internal.Logger.WithField("recipient", recipient).Infof("Notification: %s", text)
	return nil
}

// FormatTaskCompleted renders the message sent when a task finishes
// and a remote control token is issued for follow-up commands.
func FormatTaskCompleted(session *internal.Session, projectName, taskOutput string) string {
	var b strings.Builder
	b.WriteString("Task completed")
	if projectName != "" {
		fmt.Fprintf(&b, " in %s", projectName)
	}
	b.WriteString("\n\n")
	if session.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", session.Description)
	}
	if taskOutput != "" {
		fmt.Fprintf(&b, "Output:\n%s\n\n", truncate(taskOutput, 2000))
	}
	writeTokenFooter(&b, session)
	return b.String()
}

// FormatTaskWaiting renders the message sent when a task pauses for
// input and hands control to the chat side.
func FormatTaskWaiting(session *internal.Session, projectName string) string {
	var b strings.Builder
	b.WriteString("Task is waiting for your input")
	if projectName != "" {
		fmt.Fprintf(&b, " in %s", projectName)
	}
	b.WriteString("\n\n")
	if session.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", session.Description)
	}
	writeTokenFooter(&b, session)
	return b.String()
}

// FormatCommandResult renders the reply for one dispatched command.
func FormatCommandResult(result *internal.ExecutionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "Command executed (%s, %dms)\n\n", result.Method, result.ExecTimeMS)
		if result.Output != "" {
			fmt.Fprintf(&b, "%s\n", truncate(result.Output, 2000))
		}
	} else {
		fmt.Fprintf(&b, "Command failed (%dms)\n\n%s\n", result.ExecTimeMS, result.Error)
	}
	return b.String()
}

func writeTokenFooter(b *strings.Builder, session *internal.Session) {
	fmt.Fprintf(b, "Session token: %s\n", session.Token)
	if session.WorkingDir != "" {
		fmt.Fprintf(b, "Working directory: %s\n", session.WorkingDir)
	}
	fmt.Fprintf(b, "Reply with %s:<command> to run a command in this session.", session.Token)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n...(truncated)"
}
