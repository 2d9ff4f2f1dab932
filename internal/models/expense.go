package models

import "time"

// Expense is a single ledger entry.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	Title    string
	Amount   float64
	Category string

	// Date is when the expense occurred.
	Date time.Time

	// UserID is the user who added the expense.
	UserID string

	// GroupID is the group the expense belongs to. Fixed at creation.
	GroupID string

	// AddedBy is the contributor's display name at creation time.
	// It is not updated if the contributor later renames.
	AddedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
