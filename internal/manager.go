package internal

import (
	"sort"
	"sync"
	"time"
)

// ManagerConfig carries the session lifecycle settings.
type ManagerConfig struct {
	TokenLength         int
	TTL                 time.Duration
	MaxGenerateAttempts int
	// MaxSessionsPerOwner caps live sessions per owner at create time.
	// Zero disables the cap.
	MaxSessionsPerOwner int
}

// Manager orchestrates the session lifecycle on top of a FileStore and
// a TokenGenerator. One mutex guards the in-memory map and every
// persistence write, so check-then-insert and check-then-delete are
// atomic with respect to other callers. Go mutexes are not reentrant:
// public methods take the lock, unexported *Locked helpers assume it.
type Manager struct {
	mu       sync.Mutex
	store    *FileStore
	gen      *TokenGenerator
	clock    Clock
	cfg      ManagerConfig
	sessions map[string]*Session
}

// Stats summarizes the stored session population.
type Stats struct {
	Total    int            `json:"total"`
	Live     int            `json:"live"`
	Expired  int            `json:"expired"`
	ByStatus map[string]int `json:"by_status"`
}

// NewManager creates a Manager and loads the persisted sessions. A
// failed load is logged and the manager starts with an empty map, the
// same way the process would after losing its store file.
func NewManager(store *FileStore, clock Clock, cfg ManagerConfig) *Manager {
	m := &Manager{
		store:    store,
		gen:      NewTokenGenerator(cfg.TokenLength),
		clock:    clock,
		cfg:      cfg,
		sessions: map[string]*Session{},
	}
	sessions, err := store.Load()
	if err != nil {
		Logger.Errorf("Failed to load sessions: %v", err)
	} else {
		m.sessions = sessions
		Logger.Infof("Loaded %d sessions from storage", len(sessions))
	}
	return m
}

// Create issues a new session with a unique token and persists it.
// The in-memory insert is rolled back if the store write fails, so
// memory and disk stay consistent.
func (m *Manager) Create(ownerID, subjectID, target, workingDir, description, status string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	if m.cfg.MaxSessionsPerOwner > 0 {
		live := 0
		for _, sess := range m.sessions {
			if sess.OwnerID == ownerID && !sess.IsExpired(now) {
				live++
			}
		}
		if live >= m.cfg.MaxSessionsPerOwner {
			return nil, &OwnerLimitError{OwnerID: ownerID, Limit: m.cfg.MaxSessionsPerOwner}
		}
	}

	existing := make(map[string]struct{}, len(m.sessions))
	for token := range m.sessions {
		existing[token] = struct{}{}
	}
	token, err := m.gen.GenerateUnique(existing, m.cfg.MaxGenerateAttempts)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = StatusActive
	}
	sess := &Session{
		Token:        token,
		OwnerID:      ownerID,
		SubjectID:    subjectID,
		Target:       target,
		WorkingDir:   workingDir,
		Description:  description,
		Status:       status,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.cfg.TTL),
		LastActiveAt: now,
	}

	m.sessions[token] = sess
	if err := m.store.Save(m.sessions, now); err != nil {
		delete(m.sessions, token)
		return nil, &PersistenceError{Op: "create", Err: err}
	}

	Logger.WithFields(map[string]interface{}{
		"token": token,
		"owner": ownerID,
	}).Info("Created session")
	return sess.Clone(), nil
}

// Get returns the session for token, or nil if the token is unknown or
// the session has expired. Expired sessions are not deleted on read;
// the sweep removes them.
func (m *Manager) Get(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(token)
}

func (m *Manager) getLocked(token string) *Session {
	sess, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if sess.IsExpired(m.clock.Now()) {
		Logger.WithField("token", token).Debug("Session expired")
		return nil
	}
	return sess.Clone()
}

// Validate shape-checks the token before looking it up, so malformed
// tokens are rejected without touching storage.
func (m *Manager) Validate(token string) *Session {
	if !m.gen.Validate(token) {
		Logger.WithField("token", token).Debug("Invalid token format")
		return nil
	}
	return m.Get(token)
}

// Update mutates the supplied fields of a live session, refreshes
// last_active_at and persists. Nil field pointers leave the field
// untouched. Returns nil, nil when the token is absent or expired.
func (m *Manager) Update(token string, status, description *string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	sess, ok := m.sessions[token]
	if !ok || sess.IsExpired(now) {
		return nil, nil
	}

	prev := *sess
	if status != nil {
		sess.Status = *status
	}
	if description != nil {
		sess.Description = *description
	}
	sess.LastActiveAt = now

	if err := m.store.Save(m.sessions, now); err != nil {
		*sess = prev
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	Logger.WithField("token", token).Debug("Updated session")
	return sess.Clone(), nil
}

// Touch refreshes a live session's last_active_at.
func (m *Manager) Touch(token string) (*Session, error) {
	return m.Update(token, nil, nil)
}

// Delete removes the session if present and persists the removal.
func (m *Manager) Delete(token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return false, nil
	}

	delete(m.sessions, token)
	if err := m.store.Save(m.sessions, m.clock.Now()); err != nil {
		m.sessions[token] = sess
		return false, &PersistenceError{Op: "delete", Err: err}
	}

	Logger.WithField("token", token).Info("Deleted session")
	return true, nil
}

// List returns live sessions, optionally filtered by owner. Pass an
// empty ownerID for all owners. Expired sessions are never returned.
func (m *Manager) List(ownerID string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var out []*Session
	for _, sess := range m.sessions {
		if sess.IsExpired(now) {
			continue
		}
		if ownerID != "" && sess.OwnerID != ownerID {
			continue
		}
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// MostRecentActiveFor returns the live session owned by ownerID with
// the greatest last_active_at, or nil if the owner has none. Ties break
// by token ordering so the pick is deterministic. Used to resolve which
// session a free-form message is for when no token is supplied.
func (m *Manager) MostRecentActiveFor(ownerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var best *Session
	for _, sess := range m.sessions {
		if sess.OwnerID != ownerID || sess.IsExpired(now) {
			continue
		}
		if best == nil ||
			sess.LastActiveAt.After(best.LastActiveAt) ||
			(sess.LastActiveAt.Equal(best.LastActiveAt) && sess.Token < best.Token) {
			best = sess
		}
	}
	if best == nil {
		return nil
	}
	Logger.WithFields(map[string]interface{}{
		"owner": ownerID,
		"token": best.Token,
	}).Debug("Resolved most recent active session")
	return best.Clone()
}

// SweepExpired deletes every stored session whose expiry has passed,
// including ones already invisible to reads, and persists once if any
// were removed. Returns the number removed. Safe to call concurrently
// with itself and with all other operations; everything goes through
// the same lock.
func (m *Manager) SweepExpired() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var expired []string
	for token, sess := range m.sessions {
		if sess.IsExpired(now) {
			expired = append(expired, token)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	removed := make(map[string]*Session, len(expired))
	for _, token := range expired {
		removed[token] = m.sessions[token]
		delete(m.sessions, token)
	}
	if err := m.store.Save(m.sessions, now); err != nil {
		for token, sess := range removed {
			m.sessions[token] = sess
		}
		return 0, &PersistenceError{Op: "sweep", Err: err}
	}

	Logger.Infof("Swept %d expired sessions", len(expired))
	return len(expired), nil
}

// Stats reports counts over the stored population, split by liveness
// and by status of the live sessions.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	stats := Stats{ByStatus: map[string]int{}}
	for _, sess := range m.sessions {
		stats.Total++
		if sess.IsExpired(now) {
			stats.Expired++
			continue
		}
		stats.Live++
		stats.ByStatus[sess.Status]++
	}
	return stats
}

// TokenLength returns the length tokens are issued with.
func (m *Manager) TokenLength() int {
	return m.gen.Length()
}
