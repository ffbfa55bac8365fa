package internal

import "strings"

// DangerousCommands is the substring denylist applied to lower-cased
// command text before dispatch.
var DangerousCommands = []string{
	"rm -rf /",
	"mkfs",
	"dd if=/dev/zero",
	"> /dev/sda",
	"fork bomb",
	":(){ :|:& };:",
}

// DefaultMaxCommandLength caps accepted command text.
const DefaultMaxCommandLength = 1000

// Validator is a coarse safety gate for raw command text. It is a
// substring blacklist, not a shell parser: trivial obfuscation bypasses
// it. It guards against accidental self-harm only and must not be
// treated as a security boundary against a malicious token holder.
type Validator struct {
	maxLength int
	denylist  []string
}

// NewValidator creates a validator with the given maximum command
// length. A non-positive maxLength uses DefaultMaxCommandLength.
func NewValidator(maxLength int) *Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxCommandLength
	}
	return &Validator{maxLength: maxLength, denylist: DangerousCommands}
}

// IsSafe reports whether command passes the gate: non-empty after
// trimming, within the length cap, and free of denylisted substrings.
func (v *Validator) IsSafe(command string) bool {
	if strings.TrimSpace(command) == "" {
		return false
	}
	if len(command) > v.maxLength {
		Logger.Warnf("Blocked over-length command (%d bytes)", len(command))
		return false
	}
	lower := strings.ToLower(command)
	for _, dangerous := range v.denylist {
		if strings.Contains(lower, dangerous) {
			Logger.WithField("pattern", dangerous).Warn("Blocked dangerous command")
			return false
		}
	}
	return true
}
