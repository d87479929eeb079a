package store

import "time"

// Permission is static reference data seeded at startup; it has no lifecycle
// of its own beyond that.
type Permission struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

const (
	RoleLevelMin = 1
	RoleLevelMax = 5
)

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
	// Permissions are deep-copied snapshots taken when the role is written.
	Permissions []Permission `json:"permissions,omitempty"`
	// IsSystem marks platform-owned roles; they cannot be updated or deleted.
	IsSystem bool `json:"isSystem"`
	// UserCount is cached and refreshed only by RecalculateUserCounts; it may
	// lag behind the users' role assignments until then.
	UserCount int       `json:"userCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
