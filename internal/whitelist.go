package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WhitelistUser is one allowed principal: the automation identity
// (UserID) mapped to the chat identity (OpenID) it may notify.
type WhitelistUser struct {
	UserID      string   `yaml:"user_id"`
	OpenID      string   `yaml:"open_id"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
	MaxSessions int      `yaml:"max_sessions"`
}

type whitelistFile struct {
	AllowedUsers []WhitelistUser `yaml:"allowed_users"`
	AdminUsers   []string        `yaml:"admin_users"`
	GlobalLimits map[string]int  `yaml:"global_limits"`
}

// openIDPlaceholders are values the shell hooks send when they cannot
// resolve a real chat identity; the whitelist supplies the mapping.
var openIDPlaceholders = map[string]bool{
	"your_open_id":    true,
	"$FEISHU_OPEN_ID": true,
	"FEISHU_OPEN_ID":  true,
}

// Whitelist is the user allow-list loaded from YAML. An empty
// whitelist allows nothing through placeholder resolution but does not
// block already-resolved identities; enforcement policy belongs to the
// front end.
type Whitelist struct {
	users        map[string]WhitelistUser
	admins       map[string]bool
	globalLimits map[string]int
}

// LoadWhitelist reads the allow-list at path. A missing file yields an
// empty whitelist and a warning, not an error, so a fresh deployment
// can start before the operator writes one.
func LoadWhitelist(path string) (*Whitelist, error) {
	w := &Whitelist{
		users:        map[string]WhitelistUser{},
		admins:       map[string]bool{},
		globalLimits: map[string]int{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Warnf("Whitelist file not found: %s", path)
			return w, nil
		}
		return nil, fmt.Errorf("failed to read whitelist %s: %w", path, err)
	}

	var file whitelistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse whitelist %s: %w", path, err)
	}

	for _, user := range file.AllowedUsers {
		if user.UserID == "" || user.OpenID == "" {
			continue
		}
		if user.MaxSessions == 0 {
			user.MaxSessions = 5
		}
		w.users[user.UserID] = user
	}
	for _, admin := range file.AdminUsers {
		w.admins[admin] = true
	}
	if file.GlobalLimits != nil {
		w.globalLimits = file.GlobalLimits
	}

	Logger.Infof("Loaded %d users from whitelist", len(w.users))
	return w, nil
}

// ResolveOpenID maps a placeholder open ID to the whitelisted chat
// identity for userID. Already-concrete open IDs pass through
// unchanged. Returns ok=false when a placeholder cannot be resolved.
func (w *Whitelist) ResolveOpenID(userID, openID string) (string, bool) {
	if !openIDPlaceholders[openID] {
		return openID, true
	}
	user, found := w.users[userID]
	if !found {
		Logger.Warnf("User %s not found in whitelist", userID)
		return "", false
	}
	Logger.Infof("Resolved placeholder OpenID for user %s", userID)
	return user.OpenID, true
}

// UserInfo returns the whitelist entry for userID.
func (w *Whitelist) UserInfo(userID string) (WhitelistUser, bool) {
	user, ok := w.users[userID]
	return user, ok
}

// IsAllowed reports whether userID appears in the allow-list.
func (w *Whitelist) IsAllowed(userID string) bool {
	_, ok := w.users[userID]
	return ok
}

// IsAdmin reports whether the chat identity is an administrator.
func (w *Whitelist) IsAdmin(openID string) bool {
	return w.admins[openID]
}

// HasPermission reports whether userID holds the named permission.
// Admins hold every permission.
func (w *Whitelist) HasPermission(userID, permission string) bool {
	user, ok := w.users[userID]
	if !ok {
		return false
	}
	if w.IsAdmin(user.OpenID) {
		return true
	}
	for _, p := range user.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// MaxSessions returns the per-user session cap, or 0 for unknown
// users.
func (w *Whitelist) MaxSessions(userID string) int {
	user, ok := w.users[userID]
	if !ok {
		return 0
	}
	return user.MaxSessions
}

// GlobalLimit returns a named global limit and whether it is set.
func (w *Whitelist) GlobalLimit(key string) (int, bool) {
	v, ok := w.globalLimits[key]
	return v, ok
}
