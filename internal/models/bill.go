package models

import "time"

// Bill is an upcoming payment reminder shared with the group.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	Title       string
	Description string
	Amount      float64

	// DueDate is the day the bill must be paid.
	DueDate time.Time

	// IsPinned bills are listed before unpinned ones.
	IsPinned bool

	// UserID is the user who added the bill.
	UserID string

	// GroupID is the group the bill belongs to. Fixed at creation.
	GroupID string

	// CreatedAt is the Unix timestamp when the bill was recorded.
	CreatedAt int64
}
