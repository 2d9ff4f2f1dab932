package auth

import (
	"context"

	"github.com/mmynk/familyledger/internal/models"
)

// Registration holds the fields needed to create an account.
type Registration struct {
	Name     string
	Handle   string
	Email    string
	Password string
	Currency string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account. The new user is in no group.
	Register(ctx context.Context, reg Registration) (*models.User, error)

	// Authenticate verifies the credential for a login identifier (email or handle)
	// and returns the user if successful.
	Authenticate(ctx context.Context, login, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
