package internal

import "time"

// Session statuses describe the state of the task that produced the
// session, not the state of command execution.
const (
	StatusActive    = "active"
	StatusWaiting   = "waiting"
	StatusCompleted = "completed"
)

// Session binds a chat identity to a named execution target for a
// limited time. The token is the only credential; whoever holds it can
// drive the target until the session expires.
type Session struct {
	Token        string    `json:"token"`
	OwnerID      string    `json:"owner_id"`
	SubjectID    string    `json:"subject_id"`
	Target       string    `json:"target"`
	WorkingDir   string    `json:"working_dir,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// IsExpired reports whether the session's validity window has passed.
// A session is live while now <= ExpiresAt.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clone returns a copy of the session so callers can read it without
// holding the manager lock.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
