package internal

import (
	"testing"
	"time"
)

func TestSession_IsExpired(t *testing.T) {
	expiry := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	sess := &Session{Token: "ABCD2345", ExpiresAt: expiry}

	if sess.IsExpired(expiry.Add(-time.Second)) {
		t.Error("IsExpired() = true before expiry")
	}
	// A session expiring exactly now is still live.
	if sess.IsExpired(expiry) {
		t.Error("IsExpired() = true at the expiry instant")
	}
	if !sess.IsExpired(expiry.Add(time.Second)) {
		t.Error("IsExpired() = false after expiry")
	}
}

func TestSession_Clone(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	sess := testSession("ABCD2345", now)

	clone := sess.Clone()
	clone.Status = StatusCompleted
	clone.Description = "changed"

	if sess.Status != StatusActive || sess.Description != "deploy task" {
		t.Error("Clone() shares state with the original")
	}
}
