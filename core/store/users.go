package store

import "time"

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// RoleAssignment binds a user to a role within a set of location scopes. The
// embedded Role is a snapshot taken at assignment time, not a live reference;
// later edits to the role do not propagate here.
type RoleAssignment struct {
	Role        Role      `json:"role"`
	LocationIDs []string  `json:"locationIds,omitempty"`
	AssignedBy  string    `json:"assignedBy,omitempty"`
	AssignedAt  time.Time `json:"assignedAt"`
}

type User struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	Title           string           `json:"title,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Status          UserStatus       `json:"status"`
	RoleAssignments []RoleAssignment `json:"roleAssignments,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
