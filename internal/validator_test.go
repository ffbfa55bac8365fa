package internal

import (
	"strings"
	"testing"
)

func TestValidator_IsSafe(t *testing.T) {
	v := NewValidator(0)

	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{"simple listing", "ls -la", true},
		{"git status", "git status", true},
		{"empty", "", false},
		{"whitespace only", "   \t  ", false},
		{"filesystem wipe", "rm -rf /", false},
		{"filesystem wipe uppercase", "RM -RF /", false},
		{"wipe embedded in text", "please run rm -rf / now", false},
		{"mkfs", "mkfs.ext4 /dev/sdb1", false},
		{"zero fill", "dd if=/dev/zero of=/dev/sda", false},
		{"raw device write", "echo x > /dev/sda", false},
		{"fork bomb", ":(){ :|:& };:", false},
		{"safe rm", "rm old.log", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsSafe(tt.command); got != tt.want {
				t.Errorf("IsSafe(%q) = %v, want %v", tt.command, got, tt.want)
			}
		})
	}
}

func TestValidator_MaxLength(t *testing.T) {
	v := NewValidator(20)
	if !v.IsSafe("echo ok") {
		t.Error("IsSafe() = false for a short command")
	}
	if v.IsSafe(strings.Repeat("a", 21)) {
		t.Error("IsSafe() = true for an over-length command")
	}
}
