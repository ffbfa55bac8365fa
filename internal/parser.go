package internal

import "strings"

// ParseRemoteCommand splits a chat message of the form
// "<token>:<command>" on the first colon and trims both halves.
// It returns ok=false for input with no colon or with an empty token
// or command; such input never reaches the broker.
func ParseRemoteCommand(message string) (token, command string, ok bool) {
	idx := strings.Index(message, ":")
	if idx < 0 {
		return "", "", false
	}
	token = strings.TrimSpace(message[:idx])
	command = strings.TrimSpace(message[idx+1:])
	if token == "" || command == "" {
		return "", "", false
	}
	return token, command, true
}
