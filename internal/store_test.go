package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatrelay/chatrelay/testutil"
)

func testSession(token string, now time.Time) *Session {
	return &Session{
		Token:        token,
		OwnerID:      "ou_owner",
		SubjectID:    "user1",
		Target:       "ws1",
		WorkingDir:   "/home/dev/project",
		Description:  "deploy task",
		Status:       StatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
		LastActiveAt: now,
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewFileStore(filepath.Join(dir, "sessions.json"))

	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Load() returned %d sessions, want 0", len(sessions))
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewFileStore(filepath.Join(dir, "sessions.json"))

	now := time.Date(2026, 8, 31, 10, 30, 0, 123456789, time.UTC)
	want := testSession("ABCD2345", now)
	if err := store.Save(map[string]*Session{want.Token: want}, now); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, ok := sessions[want.Token]
	if !ok {
		t.Fatalf("Load() missing token %s", want.Token)
	}

	if got.Token != want.Token || got.OwnerID != want.OwnerID ||
		got.SubjectID != want.SubjectID || got.Target != want.Target ||
		got.WorkingDir != want.WorkingDir || got.Description != want.Description ||
		got.Status != want.Status {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if !got.LastActiveAt.Equal(want.LastActiveAt) {
		t.Errorf("LastActiveAt = %v, want %v", got.LastActiveAt, want.LastActiveAt)
	}
}

func TestFileStore_SaveWritesUpdatedAt(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "sessions.json")
	store := NewFileStore(path)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if err := store.Save(map[string]*Session{}, now); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read store file: %v", err)
	}
	var file struct {
		UpdatedAt time.Time `json:"updated_at"`
	}
	testutil.JSONUnmarshal(t, data, &file)
	if !file.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", file.UpdatedAt, now)
	}
}

func TestFileStore_LoadSkipsCorruptRecord(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	good, err := json.Marshal(testSession("GOODTOK2", now))
	if err != nil {
		t.Fatal(err)
	}

	raw := `{
		"sessions": {
			"GOODTOK2": ` + string(good) + `,
			"BADTOKEN": {"token": "BADTOKEN", "created_at": "not-a-timestamp"}
		},
		"updated_at": "2026-08-31T12:00:00Z"
	}`
	path := testutil.WriteFile(t, dir, "sessions.json", []byte(raw))

	store := NewFileStore(path)
	sessions, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil with corrupt record skipped", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Load() returned %d sessions, want 1", len(sessions))
	}
	if _, ok := sessions["GOODTOK2"]; !ok {
		t.Error("Load() dropped the intact record")
	}
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "sessions.json", []byte("{not json"))

	store := NewFileStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("Load() error = nil, want parse error for corrupt file")
	}
}

func TestFileStore_SaveCreatesParentDir(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	store := NewFileStore(filepath.Join(dir, "nested", "deep", "sessions.json"))

	if err := store.Save(map[string]*Session{}, time.Now()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("Save() did not create the store file: %v", err)
	}
}
