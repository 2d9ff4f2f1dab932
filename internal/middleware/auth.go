package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmynk/familyledger/internal/auth"
	"github.com/mmynk/familyledger/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// userKey is the context key for the authenticated user.
	userKey contextKey = "user"
	// requestInfoKey is the context key for the per-request info shared with Logging.
	requestInfoKey contextKey = "request_info"
)

// TokenResolver turns a bearer token into the user it belongs to.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// ErrorWriter writes err to the response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// UserFromContext returns the authenticated user, or nil if the request is anonymous.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.userID = user.ID
	}
	return context.WithValue(ctx, userKey, user)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", auth.ErrMissingToken
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// RequireAuth validates the bearer token and loads the user from storage on every
// request, so role and group changes apply immediately to existing tokens.
func RequireAuth(resolver TokenResolver, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, r, err)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
