package internal

import "testing"

func TestParseRemoteCommand(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantToken   string
		wantCommand string
		wantOK      bool
	}{
		{"plain", "ABCD2345:ls -la", "ABCD2345", "ls -la", true},
		{"padded", "  ABCD2345 :  git status ", "ABCD2345", "git status", true},
		{"command contains colons", "ABCD2345:echo a:b:c", "ABCD2345", "echo a:b:c", true},
		{"no colon", "ABCD2345 ls", "", "", false},
		{"empty token", ":ls", "", "", false},
		{"empty command", "ABCD2345:", "", "", false},
		{"empty command with spaces", "ABCD2345:   ", "", "", false},
		{"empty message", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, command, ok := ParseRemoteCommand(tt.message)
			if ok != tt.wantOK {
				t.Fatalf("ParseRemoteCommand(%q) ok = %v, want %v", tt.message, ok, tt.wantOK)
			}
			if token != tt.wantToken || command != tt.wantCommand {
				t.Errorf("ParseRemoteCommand(%q) = (%q, %q), want (%q, %q)",
					tt.message, token, command, tt.wantToken, tt.wantCommand)
			}
		})
	}
}
