package users

import (
	"time"
)

// RoleType represents a user's authorization role.
type RoleType string

const (
	RoleUser  RoleType = "user"  // Regular forum member
	RoleAdmin RoleType = "admin" // Can moderate all groups and threads
)

// DefaultAvatar is the sentinel avatar path used when a user has not set one.
const DefaultAvatar = "/default-avatar.png"

type User struct {
	ID           string    `json:"id,omitempty"`       // Unique identifier for the user
	Username     string    `json:"username,omitempty"` // Unique username, usable as a login identifier
	Email        string    `json:"email,omitempty"`    // Unique email address, usable as a login identifier
	PasswordHash string    `json:"-"`                  // Hashed version of the user's password - never serialize
	Role         RoleType  `json:"role,omitempty"`     // Authorization role, defaults to RoleUser
	Avatar       string    `json:"avatar,omitempty"`   // Optional avatar path
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Public is the projection of a user that is safe to return to clients. It
// never carries the password hash.
type Public struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar"`
	Role     RoleType `json:"role"`
}

// Public returns the client-safe projection, substituting the default avatar
// when none is set.
func (u *User) Public() Public {
	avatar := u.Avatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Public{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   avatar,
		Role:     u.Role,
	}
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
