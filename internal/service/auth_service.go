package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/auth"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

// Session is an authenticated user with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

// AuthService handles registration, login, token resolution and profile updates.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, err := s.jwtManager.Generate(user.ID)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

// Register creates a new account outside any group and signs it in.
func (s *AuthService) Register(ctx context.Context, reg auth.Registration) (*Session, error) {
	s.logger.Info("Register request", "email", reg.Email, "handle", reg.Handle)

	user, err := s.authenticator.Register(ctx, reg)
	if err != nil {
		s.logger.Warn("Registration failed", "email", reg.Email, "error", err)
		return nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Login authenticates by email or handle and returns a new session.
func (s *AuthService) Login(ctx context.Context, login, password string) (*Session, error) {
	s.logger.Info("Login request", "login", login)

	user, err := s.authenticator.Authenticate(ctx, login, password)
	if err != nil {
		s.logger.Warn("Login failed", "login", login, "error", err)
		if apperr.KindOf(err) == apperr.KindStoreUnavailable {
			return nil, err
		}
		return nil, auth.ErrInvalidCredentials
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return session, nil
}

// ResolveToken validates a bearer token and loads the user it belongs to. Group and
// role come from storage, never from the token.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}

	userID, err := s.jwtManager.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Authentication("user no longer exists")
	}
	if err != nil {
		return nil, storeError(err, "user not found")
	}
	return user, nil
}

// UpdateProfile changes the actor's display name, avatar and/or currency and issues a
// new token.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *models.User, update models.ProfileUpdate) (*Session, error) {
	s.logger.Info("UpdateProfile request", "user_id", actor.ID)

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		update.Name = &name
	}
	if update.Currency != nil {
		currency := strings.TrimSpace(*update.Currency)
		if currency == "" {
			return nil, apperr.Validation("currency must not be empty")
		}
		update.Currency = &currency
	}
	if update.Avatar != nil {
		avatar := strings.TrimSpace(*update.Avatar)
		update.Avatar = &avatar
	}

	user, err := s.users.UpdateProfile(ctx, actor.ID, update)
	if err != nil {
		s.logger.Error("UpdateProfile failed", "user_id", actor.ID, "error", err)
		return nil, storeError(err, "user not found")
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", user.ID)
	return session, nil
}
