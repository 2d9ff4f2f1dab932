// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/familyledger/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// UserStore persists users and their flat group membership.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)

	// UpdateProfile applies the non-nil fields and returns the updated user.
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)

	// SetMembership sets the user's group and role in a single write.
	// An empty groupID clears the membership.
	SetMembership(ctx context.Context, userID, groupID string, role models.Role) error

	// ListMembers returns the display-safe projection of every user in the group.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)
}

// GroupStore persists groups.
type GroupStore interface {
	// CreateGroupWithAdmin inserts the group and makes group.AdminID its admin in one
	// transaction. Returns ErrConflict if the invite code is already taken.
	CreateGroupWithAdmin(ctx context.Context, group *models.Group) error

	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)

	// UpdateSettings applies the non-nil fields in a single statement and returns the
	// updated group.
	UpdateSettings(ctx context.Context, groupID string, update models.SettingsUpdate) (*models.Group, error)
}

// ExpenseStore persists ledger entries.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses, newest date first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	DeleteExpense(ctx context.Context, expenseID string) error
}

// BillStore persists bill reminders.
type BillStore interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error)

	// ToggleBillPin flips the pinned flag in a single statement.
	ToggleBillPin(ctx context.Context, billID string) (*models.Bill, error)

	DeleteBill(ctx context.Context, billID string) error
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	BillStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
