package internal

import (
	"path/filepath"
	"testing"

	"github.com/chatrelay/chatrelay/testutil"
)

const testWhitelistYAML = `
allowed_users:
  - user_id: dev1
    open_id: ou_dev1
    name: Dev One
    permissions: [execute, notify]
    max_sessions: 3
  - user_id: dev2
    open_id: ou_dev2
    name: Dev Two
  - user_id: broken
    open_id: ""
admin_users:
  - ou_admin
  - ou_dev2
global_limits:
  max_total_sessions: 50
`

func loadTestWhitelist(t *testing.T) *Whitelist {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "whitelist.yaml", []byte(testWhitelistYAML))
	w, err := LoadWhitelist(path)
	if err != nil {
		t.Fatalf("LoadWhitelist() error = %v", err)
	}
	return w
}

func TestLoadWhitelist_MissingFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	w, err := LoadWhitelist(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadWhitelist() error = %v, want empty whitelist for missing file", err)
	}
	if w.IsAllowed("anyone") {
		t.Error("IsAllowed() = true on an empty whitelist")
	}
}

func TestLoadWhitelist_MalformedFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "whitelist.yaml", []byte("allowed_users: [not a map"))

	if _, err := LoadWhitelist(path); err == nil {
		t.Fatal("LoadWhitelist() error = nil, want parse error")
	}
}

func TestWhitelist_Users(t *testing.T) {
	w := loadTestWhitelist(t)

	if !w.IsAllowed("dev1") || !w.IsAllowed("dev2") {
		t.Error("IsAllowed() = false for listed users")
	}
	if w.IsAllowed("broken") {
		t.Error("IsAllowed() = true for an entry with an empty open_id")
	}
	if w.IsAllowed("stranger") {
		t.Error("IsAllowed() = true for an unlisted user")
	}

	user, ok := w.UserInfo("dev1")
	if !ok {
		t.Fatal("UserInfo() missing dev1")
	}
	if user.Name != "Dev One" || user.MaxSessions != 3 {
		t.Errorf("UserInfo() = %+v", user)
	}
	// Entries without an explicit cap get the default.
	if got := w.MaxSessions("dev2"); got != 5 {
		t.Errorf("MaxSessions(dev2) = %d, want 5", got)
	}
	if got := w.MaxSessions("stranger"); got != 0 {
		t.Errorf("MaxSessions(stranger) = %d, want 0", got)
	}
}

func TestWhitelist_ResolveOpenID(t *testing.T) {
	w := loadTestWhitelist(t)

	tests := []struct {
		name   string
		userID string
		openID string
		want   string
		wantOK bool
	}{
		{"concrete id passes through", "dev1", "ou_concrete", "ou_concrete", true},
		{"placeholder resolved", "dev1", "your_open_id", "ou_dev1", true},
		{"env placeholder resolved", "dev1", "$FEISHU_OPEN_ID", "ou_dev1", true},
		{"bare placeholder resolved", "dev1", "FEISHU_OPEN_ID", "ou_dev1", true},
		{"placeholder for unlisted user", "stranger", "your_open_id", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.ResolveOpenID(tt.userID, tt.openID)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ResolveOpenID(%q, %q) = (%q, %v), want (%q, %v)",
					tt.userID, tt.openID, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWhitelist_AdminsAndPermissions(t *testing.T) {
	w := loadTestWhitelist(t)

	if !w.IsAdmin("ou_admin") {
		t.Error("IsAdmin(ou_admin) = false")
	}
	if w.IsAdmin("ou_dev1") {
		t.Error("IsAdmin(ou_dev1) = true")
	}

	if !w.HasPermission("dev1", "execute") {
		t.Error("HasPermission(dev1, execute) = false")
	}
	if w.HasPermission("dev1", "admin") {
		t.Error("HasPermission(dev1, admin) = true for unlisted permission")
	}
	// dev2's open_id is in admin_users, so every permission passes.
	if !w.HasPermission("dev2", "anything") {
		t.Error("HasPermission(dev2, anything) = false for an admin")
	}
	if w.HasPermission("stranger", "execute") {
		t.Error("HasPermission(stranger, execute) = true")
	}
}

func TestWhitelist_GlobalLimits(t *testing.T) {
	w := loadTestWhitelist(t)

	if v, ok := w.GlobalLimit("max_total_sessions"); !ok || v != 50 {
		t.Errorf("GlobalLimit(max_total_sessions) = (%d, %v), want (50, true)", v, ok)
	}
	if _, ok := w.GlobalLimit("unset"); ok {
		t.Error("GlobalLimit(unset) reported present")
	}
}
