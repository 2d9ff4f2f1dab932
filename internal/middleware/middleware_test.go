package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/models"
)

type fakeResolver map[string]*models.User

func (f fakeResolver) ResolveToken(_ context.Context, token string) (*models.User, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return nil, apperr.Authentication("invalid or expired token")
}

func writeTestError(w http.ResponseWriter, _ *http.Request, err error) {
	w.WriteHeader(apperr.KindOf(err).Status())
	json.NewEncoder(w).Encode(map[string]string{"message": apperr.Message(err)})
}

func TestRequireAuth(t *testing.T) {
	alice := &models.User{ID: "u1", Name: "Alice"}
	resolver := fakeResolver{"good": alice}

	var seen *models.User
	handler := RequireAuth(resolver, writeTestError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK && seen != alice {
				t.Errorf("expected user in context, got %+v", seen)
			}
			if tt.status != http.StatusOK && seen != nil {
				t.Error("handler should not run")
			}
		})
	}
}

func TestLoggingCapturesUser(t *testing.T) {
	var info *requestInfo
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = r.Context().Value(requestInfoKey).(*requestInfo)
		WithUser(r.Context(), &models.User{ID: "u1"})
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Logging(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	if info == nil || info.userID != "u1" {
		t.Errorf("expected user id recorded, got %+v", info)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/expenses", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("expected Authorization to be allowed, got %q", got)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses", func(w http.ResponseWriter, r *http.Request) {})
	handler := m.Middleware(mux)

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/expenses", nil))
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	want := `familyledger_http_requests_total{method="GET",route="GET /expenses",status="200"} 3`
	if !strings.Contains(string(body), want) {
		t.Errorf("expected %q in metrics output", want)
	}
	if !strings.Contains(string(body), `route="unmatched",status="404"`) {
		t.Error("expected unmatched route to be recorded")
	}
}
