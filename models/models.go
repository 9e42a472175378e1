package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers so exported documents stay readable
	// by the dashboard UI and by older exports.
	decimal.MarshalJSONWithoutQuotes = true
}

// User represents a local profile (identity record).
type User struct {
	ID          string    `json:"id"`          // Unique ID (UUID, dashless)
	Username    string    `json:"username"`    // Always lowercase, unique (case-insensitive)
	Password    string    `json:"password"`    // Password hash, never the raw password
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`   // UTC
	LastLogin   time.Time `json:"lastLogin"`   // UTC
	CloudSync   bool      `json:"cloudSync"`   // Whether this profile mirrors to the remote store
}

// GlobalSettings are the registry-wide switches shared by every profile on this device.
type GlobalSettings struct {
	DefaultLanguage       string `json:"defaultLanguage"`
	AllowUserRegistration bool   `json:"allowUserRegistration"`
	CloudSyncEnabled      bool   `json:"cloudSyncEnabled"`
}

// Registry is the persisted list of profiles plus the current-user pointer.
type Registry struct {
	Users          []User         `json:"users"`
	CurrentUser    *string        `json:"currentUser"` // nil when nobody is logged in
	GlobalSettings GlobalSettings `json:"globalSettings"`
}

// DefaultRegistry returns an empty registry with registration and sync allowed.
func DefaultRegistry() Registry {
	return Registry{
		Users:       []User{},
		CurrentUser: nil,
		GlobalSettings: GlobalSettings{
			DefaultLanguage:       "en",
			AllowUserRegistration: true,
			CloudSyncEnabled:      true,
		},
	}
}

// FindUser returns the index of the user with the given id, or -1.
func (r *Registry) FindUser(id string) int {
	for i := range r.Users {
		if r.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// SyncPayload is the unit mirrored to the remote store, keyed by username.
type SyncPayload struct {
	User     User         `json:"user"`
	UserData UserDocument `json:"userData"`
}

// SyncState records the outcome of the last push for one username on this device.
type SyncState struct {
	LastSync *time.Time `json:"lastSync,omitempty"`
	Synced   bool       `json:"synced"`
}
