package models

import "time"

// Role is a user's role within their current group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// DefaultCurrency is the display currency assigned at registration when none is given.
const DefaultCurrency = "$"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Handle is the unique login handle.
	Handle string

	// Email is the user's email address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password. Never leaves the server.
	PasswordHash string

	// Role is admin or member. A user outside any group is admin of themselves.
	Role Role

	// GroupID is the user's current group, empty when the user is in no group.
	GroupID string

	// Currency is the display currency symbol (e.g. "$", "€").
	Currency string

	// Avatar is an optional avatar reference (URL or preset name).
	Avatar string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewUser creates a user outside any group, which makes them admin of themselves.
func NewUser(name, handle, email, passwordHash, currency string) *User {
	if currency == "" {
		currency = DefaultCurrency
	}
	now := time.Now().Unix()
	return &User{
		Name:         name,
		Handle:       handle,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// InGroup reports whether the user currently belongs to a group.
func (u *User) InGroup() bool {
	return u.GroupID != ""
}

// ProfileUpdate holds the optional fields of a profile update. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Name     *string
	Avatar   *string
	Currency *string
}

// Member is the display-safe projection of a User returned by member listings.
type Member struct {
	ID     string
	Name   string
	Email  string
	Role   Role
	Avatar string
}
