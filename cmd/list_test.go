package cmd

import (
	"strings"
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"seconds old", now.Add(-30 * time.Second), "just now"},
		{"minutes old", now.Add(-5 * time.Minute), "5m ago"},
		{"hours old", now.Add(-3 * time.Hour), "3h ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(tt.ts); got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatAge_OldTimestampShowsDate(t *testing.T) {
	ts := time.Now().Add(-48 * time.Hour)
	got := formatAge(ts)
	if strings.Contains(got, "ago") || got == "just now" {
		t.Errorf("formatAge() = %q, want an absolute date for old timestamps", got)
	}
	if got != ts.Format("2006-01-02 15:04") {
		t.Errorf("formatAge() = %q, want %q", got, ts.Format("2006-01-02 15:04"))
	}
}
