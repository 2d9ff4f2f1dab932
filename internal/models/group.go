package models

// InviteCodeLength is the number of characters in a group invite code.
const InviteCodeLength = 6

// Group is the shared context a family collaborates within.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Smiths").
	Name string

	// AdminID is the user who created the group.
	AdminID string

	// InviteCode is the short human-shareable code used to join the group.
	InviteCode string

	// Income is the group's monthly income target (>= 0).
	Income float64

	// Budget is the group's monthly spending budget (>= 0).
	Budget float64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// SettingsUpdate is a partial update of a group's income and budget.
// Nil fields are left untouched.
type SettingsUpdate struct {
	Income *float64
	Budget *float64
}
