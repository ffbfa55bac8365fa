package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileStore persists the full session map as a single JSON document.
// Every save rewrites the whole file; there is no incremental update.
// FileStore does no locking of its own. The Manager serializes all
// Load/Save calls through its lock.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// storeFile is the on-disk representation: sessions keyed by token plus
// a top-level updated_at marker. Individual sessions stay raw so one
// corrupt record does not poison the whole load.
type storeFile struct {
	Sessions  map[string]json.RawMessage `json:"sessions"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Load reads the persisted session set. A missing file yields an empty
// map, not an error. A record that fails to decode is logged and
// skipped; the rest of the load proceeds.
func (fs *FileStore) Load() (map[string]*Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Session{}, nil
		}
		return nil, &StorageError{Path: fs.path, Op: "read", Err: err}
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &StorageError{Path: fs.path, Op: "parse", Err: err}
	}

	sessions := make(map[string]*Session, len(file.Sessions))
	for token, raw := range file.Sessions {
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			Logger.WithFields(map[string]interface{}{
				"token": token,
				"path":  fs.path,
			}).Errorf("Failed to load session record, skipping: %v", err)
			continue
		}
		if sess.Token == "" {
			sess.Token = token
		}
		sessions[token] = &sess
	}
	return sessions, nil
}

// Save rewrites the persisted representation with the given sessions
// and stamps updated_at with now.
func (fs *FileStore) Save(sessions map[string]*Session, now time.Time) error {
	if dir := filepath.Dir(fs.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &StorageError{Path: fs.path, Op: "write", Err: err}
		}
	}

	raw := make(map[string]json.RawMessage, len(sessions))
	for token, sess := range sessions {
		data, err := json.Marshal(sess)
		if err != nil {
			return &StorageError{Path: fs.path, Op: "write", Err: err}
		}
		raw[token] = data
	}

	data, err := json.MarshalIndent(storeFile{Sessions: raw, UpdatedAt: now}, "", "  ")
	if err != nil {
		return &StorageError{Path: fs.path, Op: "write", Err: err}
	}
	if err := os.WriteFile(fs.path, data, 0644); err != nil {
		return &StorageError{Path: fs.path, Op: "write", Err: err}
	}
	return nil
}
