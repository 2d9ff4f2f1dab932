// Package api exposes the family ledger services over HTTP/JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mmynk/familyledger/internal/middleware"
	"github.com/mmynk/familyledger/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server routes HTTP requests to the services.
type Server struct {
	auth     *service.AuthService
	groups   *service.GroupService
	expenses *service.ExpenseService
	bills    *service.BillService
	health   Pinger
	metrics  *middleware.Metrics

	corsOrigin string
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigin sets the allowed browser origin. The default allows any origin.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

// WithClock overrides the clock used for bill statuses and summary windows.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMetrics sets the metrics collector. A fresh one is created otherwise.
func WithMetrics(m *middleware.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a Server.
func NewServer(
	auth *service.AuthService,
	groups *service.GroupService,
	expenses *service.ExpenseService,
	bills *service.BillService,
	health Pinger,
	opts ...Option,
) *Server {
	s := &Server{
		auth:     auth,
		groups:   groups,
		expenses: expenses,
		bills:    bills,
		health:   health,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = middleware.NewMetrics()
	}
	return s
}

// Routes registers every endpoint on a new ServeMux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	protected := middleware.RequireAuth(s.auth, writeError)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protected(h))
	}

	// Public
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Identity
	handle("GET /auth/me", s.me)
	handle("PUT /auth/profile", s.updateProfile)

	// Groups
	handle("POST /groups", s.createGroup)
	handle("POST /groups/join", s.joinGroup)
	handle("POST /groups/leave", s.leaveGroup)
	handle("PUT /groups/settings", s.updateSettings)
	handle("GET /groups/me", s.getGroup)
	handle("GET /groups/members", s.getMembers)

	// Ledger
	handle("GET /expenses", s.listExpenses)
	handle("POST /expenses", s.addExpense)
	handle("GET /expenses/summary", s.summary)
	handle("DELETE /expenses/{id}", s.deleteExpense)

	// Bills
	handle("GET /bills", s.listBills)
	handle("POST /bills", s.addBill)
	handle("PUT /bills/{id}/pin", s.togglePin)
	handle("DELETE /bills/{id}", s.deleteBill)

	return mux
}

// Handler returns the routes wrapped in logging, CORS and metrics middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Routes()
	h = s.metrics.Middleware(h)
	h = middleware.CORS(s.corsOrigin)(h)
	h = middleware.Logging(h)
	return h
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
