package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// maxHandleAttempts bounds the search for a free handle derived from an email.
const maxHandleAttempts = 10

var (
	ErrInvalidCredentials = apperr.Authentication("invalid email or password")
	ErrWeakPassword       = apperr.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrUserExists         = apperr.Validation("user already exists")
)

// UserStorage defines the user persistence operations the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	a.cost = cost
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, reg Registration) (*models.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Handle = strings.ToLower(strings.TrimSpace(reg.Handle))
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))

	if reg.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if reg.Email == "" {
		return nil, apperr.Validation("email is required")
	}
	addr, err := mail.ParseAddress(reg.Email)
	if err != nil {
		return nil, apperr.Validation("email is invalid")
	}
	reg.Email = strings.ToLower(addr.Address)
	// Logins containing "@" are looked up by email, so handles cannot contain one.
	if strings.Contains(reg.Handle, "@") {
		return nil, apperr.Validation("handle must not contain @")
	}
	if err := a.ValidateCredential(reg.Password); err != nil {
		return nil, err
	}

	if err := a.ensureUnused(ctx, a.storage.GetUserByEmail, reg.Email); err != nil {
		return nil, err
	}
	if reg.Handle != "" {
		if err := a.ensureUnused(ctx, a.storage.GetUserByHandle, reg.Handle); err != nil {
			return nil, err
		}
	} else {
		handle, err := a.deriveHandle(ctx, reg.Email)
		if err != nil {
			return nil, err
		}
		reg.Handle = handle
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(reg.Name, reg.Handle, reg.Email, string(hashedPassword), strings.TrimSpace(reg.Currency))
	user.ID = uuid.New().String()

	// The unique indexes catch registrations racing past the checks above.
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, apperr.StoreUnavailable(err)
	}

	return user, nil
}

// deriveHandle picks a free handle from the email's local part, adding a short
// random suffix when the bare local part is taken.
func (a *PasswordAuthenticator) deriveHandle(ctx context.Context, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	candidate := base
	for range maxHandleAttempts {
		err := a.ensureUnused(ctx, a.storage.GetUserByHandle, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrUserExists) {
			return "", err
		}
		candidate = base + "-" + uuid.New().String()[:4]
	}
	return "", apperr.StoreUnavailable(fmt.Errorf("no free handle for %q after %d attempts", base, maxHandleAttempts))
}

func (a *PasswordAuthenticator) ensureUnused(ctx context.Context, lookup func(context.Context, string) (*models.User, error), key string) error {
	_, err := lookup(ctx, key)
	switch {
	case err == nil:
		return ErrUserExists
	case errors.Is(err, storage.ErrNotFound):
		return nil
	default:
		return apperr.StoreUnavailable(err)
	}
}

// Authenticate verifies the login (email or handle) and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, login, credential string) (*models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || credential == "" {
		return nil, ErrInvalidCredentials
	}

	lookup := a.storage.GetUserByHandle
	if strings.Contains(login, "@") {
		lookup = a.storage.GetUserByEmail
	}

	user, err := lookup(ctx, login)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
