package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/calculator"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

// ErrNoSession is returned by Store methods that need a signed-in user.
var ErrNoSession = apperr.Authentication("not signed in")

// Snapshot is the last-fetched view of the signed-in user's shared state.
type Snapshot struct {
	User      ledgerapi.User
	Group     *ledgerapi.Group
	Members   []ledgerapi.Member
	Expenses  []ledgerapi.Expense
	Bills     []ledgerapi.Bill
	FetchedAt time.Time
}

// Store keeps one cache per session. The cache is dropped wholesale on logout and on
// every group change; ledger and bill writes refetch only the list they touched.
// Authentication failures from the server end the session.
type Store struct {
	api *Client
	now func() time.Time

	mu       sync.RWMutex
	token    string
	user     *ledgerapi.User
	snapshot *Snapshot
	// generation is bumped whenever the cache is dropped. Fetches started under an
	// older generation are not cached.
	generation uint64

	refreshes singleflight.Group
}

// NewStore creates a signed-out store.
func NewStore(api *Client) *Store {
	return &Store{api: api, now: time.Now}
}

// Token returns the current session token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, or nil.
func (s *Store) User() *ledgerapi.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Cached returns the cached snapshot without fetching, or nil.
func (s *Store) Cached() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) startSession(resp *ledgerapi.AuthResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := resp.User
	s.token = resp.Token
	s.user = &user
	s.snapshot = nil
	s.generation++
}

// Register creates an account and signs in.
func (s *Store) Register(ctx context.Context, req ledgerapi.RegisterRequest) error {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return err
	}
	s.startSession(resp)
	return nil
}

// Login signs in by email or handle, replacing any current session.
func (s *Store) Login(ctx context.Context, login, password string) error {
	resp, err := s.api.Login(ctx, login, password)
	if err != nil {
		return err
	}
	s.startSession(resp)
	return nil
}

// Logout forgets the session and its cache.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.snapshot = nil
	s.generation++
}

// invalidate drops the cache but keeps the session. Refreshes already in flight
// neither fill the cache nor get joined by later ones.
func (s *Store) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.generation++
}

// session returns the token or ErrNoSession.
func (s *Store) session() (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// check ends the session if err says the token is no longer accepted.
func (s *Store) check(token string, err error) error {
	if apperr.KindOf(err) == apperr.KindAuthentication {
		s.mu.Lock()
		if s.token == token {
			s.token = ""
			s.user = nil
			s.snapshot = nil
		}
		s.mu.Unlock()
	}
	return err
}

// Load returns the cached snapshot, fetching it first if there is none.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if snap := s.Cached(); snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh refetches everything. Concurrent refreshes of the same session and cache
// generation share one round of requests.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	token, gen := s.token, s.generation
	s.mu.RUnlock()
	if token == "" {
		return nil, ErrNoSession
	}

	key := token + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := s.refreshes.Do(key, func() (any, error) {
		return s.fetch(ctx, token, gen)
	})
	if err != nil {
		return nil, s.check(token, err)
	}
	return v.(*Snapshot), nil
}

// fetch loads every part of the snapshot concurrently and caches it if neither the
// session nor the cache generation changed meanwhile.
func (s *Store) fetch(ctx context.Context, token string, gen uint64) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := s.api.Me(gctx, token)
		if err != nil {
			return err
		}
		snap.User = *user
		return nil
	})
	g.Go(func() error {
		group, err := s.api.Group(gctx, token)
		snap.Group = group
		return err
	})
	g.Go(func() error {
		members, err := s.api.Members(gctx, token)
		snap.Members = members
		return err
	})
	g.Go(func() error {
		expenses, err := s.api.Expenses(gctx, token)
		snap.Expenses = expenses
		return err
	})
	g.Go(func() error {
		bills, err := s.api.Bills(gctx, token)
		snap.Bills = bills
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.FetchedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token && s.generation == gen {
		user := snap.User
		s.user = &user
		s.snapshot = snap
	}
	return snap, nil
}

// UpdateProfile changes the signed-in user's profile and adopts the new token.
func (s *Store) UpdateProfile(ctx context.Context, req ledgerapi.ProfileRequest) error {
	token, err := s.session()
	if err != nil {
		return err
	}
	resp, err := s.api.UpdateProfile(ctx, token, req)
	if err != nil {
		return s.check(token, err)
	}
	s.startSession(resp)
	return nil
}

// CreateGroup creates a group with the signed-in user as admin.
func (s *Store) CreateGroup(ctx context.Context, name string) (*ledgerapi.Group, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	group, err := s.api.CreateGroup(ctx, token, name)
	if err != nil {
		return nil, s.check(token, err)
	}
	s.invalidate()
	if _, err := s.Refresh(ctx); err != nil {
		return group, err
	}
	return group, nil
}

// JoinGroup moves the signed-in user into the group owning inviteCode.
func (s *Store) JoinGroup(ctx context.Context, inviteCode string) (*Snapshot, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	if _, err := s.api.JoinGroup(ctx, token, inviteCode); err != nil {
		return nil, s.check(token, err)
	}
	s.invalidate()
	return s.Refresh(ctx)
}

// LeaveGroup removes the signed-in user from their group.
func (s *Store) LeaveGroup(ctx context.Context) (*Snapshot, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	if err := s.api.LeaveGroup(ctx, token); err != nil {
		return nil, s.check(token, err)
	}
	s.invalidate()
	return s.Refresh(ctx)
}

// UpdateSettings changes the group's income and/or budget.
func (s *Store) UpdateSettings(ctx context.Context, req ledgerapi.SettingsRequest) (*ledgerapi.Group, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	group, err := s.api.UpdateSettings(ctx, token, req)
	if err != nil {
		return nil, s.check(token, err)
	}
	s.update(token, func(snap *Snapshot) { snap.Group = group })
	return group, nil
}

// update applies fn to a copy of the cached snapshot if the session is unchanged.
func (s *Store) update(token string, fn func(snap *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token || s.snapshot == nil {
		return
	}
	next := *s.snapshot
	fn(&next)
	next.FetchedAt = s.now()
	s.snapshot = &next
}

func (s *Store) refetchExpenses(ctx context.Context, token string) error {
	expenses, err := s.api.Expenses(ctx, token)
	if err != nil {
		return s.check(token, err)
	}
	s.update(token, func(snap *Snapshot) { snap.Expenses = expenses })
	return nil
}

func (s *Store) refetchBills(ctx context.Context, token string) error {
	bills, err := s.api.Bills(ctx, token)
	if err != nil {
		return s.check(token, err)
	}
	s.update(token, func(snap *Snapshot) { snap.Bills = bills })
	return nil
}

// AddExpense records an expense and refreshes the cached ledger.
func (s *Store) AddExpense(ctx context.Context, req ledgerapi.ExpenseRequest) (*ledgerapi.Expense, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	expense, err := s.api.AddExpense(ctx, token, req)
	if err != nil {
		return nil, s.check(token, err)
	}
	return expense, s.refetchExpenses(ctx, token)
}

// DeleteExpense removes an expense and refreshes the cached ledger.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	token, err := s.session()
	if err != nil {
		return err
	}
	if err := s.api.DeleteExpense(ctx, token, id); err != nil {
		return s.check(token, err)
	}
	return s.refetchExpenses(ctx, token)
}

// AddBill records a bill and refreshes the cached bills.
func (s *Store) AddBill(ctx context.Context, req ledgerapi.BillRequest) (*ledgerapi.Bill, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	bill, err := s.api.AddBill(ctx, token, req)
	if err != nil {
		return nil, s.check(token, err)
	}
	return bill, s.refetchBills(ctx, token)
}

// TogglePin flips a bill's pin and refreshes the cached bills, whose order depends on it.
func (s *Store) TogglePin(ctx context.Context, id string) (*ledgerapi.Bill, error) {
	token, err := s.session()
	if err != nil {
		return nil, err
	}
	bill, err := s.api.TogglePin(ctx, token, id)
	if err != nil {
		return nil, s.check(token, err)
	}
	return bill, s.refetchBills(ctx, token)
}

// DeleteBill removes a bill and refreshes the cached bills.
func (s *Store) DeleteBill(ctx context.Context, id string) error {
	token, err := s.session()
	if err != nil {
		return err
	}
	if err := s.api.DeleteBill(ctx, token, id); err != nil {
		return s.check(token, err)
	}
	return s.refetchBills(ctx, token)
}

// Summary computes the analytics for window from the cached ledger, loading it first
// if needed. No request is made when the cache is warm.
func (s *Store) Summary(ctx context.Context, window string) (*ledgerapi.Summary, error) {
	w, err := calculator.ParseWindow(window)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	expenses := make([]*models.Expense, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		date, err := ledgerapi.ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		expenses = append(expenses, &models.Expense{
			ID:        e.ID,
			Title:     e.Title,
			Amount:    e.Amount,
			Category:  e.Category,
			Date:      date,
			UserID:    e.UserID,
			GroupID:   e.GroupID,
			AddedBy:   e.AddedBy,
			CreatedAt: e.CreatedAt,
		})
	}

	var group *models.Group
	if snap.Group != nil {
		group = &models.Group{
			ID:     snap.Group.ID,
			Name:   snap.Group.Name,
			Income: snap.Group.Income,
			Budget: snap.Group.Budget,
		}
	}

	summary := calculator.Summarize(expenses, group, w, s.now())
	out := summary.API()
	return &out, nil
}

// IsAuthError reports whether err means the caller must sign in again.
func IsAuthError(err error) bool {
	return apperr.KindOf(err) == apperr.KindAuthentication
}
