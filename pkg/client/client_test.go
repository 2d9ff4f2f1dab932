package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/familyledger/internal/api"
	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/auth"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/service"
	"github.com/mmynk/familyledger/internal/storage/sqlite"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

// setupTestAPI starts the real HTTP stack on a temp database and returns a client for it.
func setupTestAPI(t *testing.T) *Client {
	t.Helper()
	ts := httptest.NewServer(newTestHandler(t))
	t.Cleanup(ts.Close)
	return New(ts.URL, WithHTTPClient(ts.Client()))
}

// newTestHandler builds the API handler over a temp database.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	publisher := events.NopPublisher{}
	server := api.NewServer(
		service.NewAuthService(
			auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
			auth.NewJWTManager("test-secret-0123456789", time.Hour),
			store,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		),
		service.NewGroupService(store, publisher),
		service.NewExpenseService(store, publisher),
		service.NewBillService(store, publisher),
		store,
	)

	t.Cleanup(func() { store.Close() })
	return server.Handler()
}

func signUp(t *testing.T, c *Client, name, email string) *Store {
	t.Helper()
	s := NewStore(c)
	err := s.Register(context.Background(), ledgerapi.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register %s failed: %v", email, err)
	}
	return s
}

func TestSmithsEndToEnd(t *testing.T) {
	c := setupTestAPI(t)
	ctx := context.Background()

	alice := signUp(t, c, "Alice", "alice@example.com")
	bob := signUp(t, c, "Bob", "bob@example.com")

	group, err := alice.CreateGroup(ctx, "Smiths")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(group.InviteCode) != 6 {
		t.Fatalf("unexpected invite code %q", group.InviteCode)
	}

	snap, err := bob.JoinGroup(ctx, group.InviteCode)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if snap.User.Role != "member" || snap.User.GroupID == nil || *snap.User.GroupID != group.ID {
		t.Fatalf("expected Bob to be member of %s, got %+v", group.ID, snap.User)
	}
	if snap.Group == nil || snap.Group.Name != "Smiths" {
		t.Errorf("expected cached group Smiths, got %+v", snap.Group)
	}
	if len(snap.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(snap.Members))
	}

	if _, err := alice.AddExpense(ctx, ledgerapi.ExpenseRequest{Title: "Groceries", Amount: 42, Category: "Food"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	snap, err = bob.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(snap.Expenses) != 1 || snap.Expenses[0].AddedBy != "Alice" {
		t.Fatalf("expected Alice's expense in Bob's ledger, got %+v", snap.Expenses)
	}

	budget := 3000.0
	_, err = bob.UpdateSettings(ctx, ledgerapi.SettingsRequest{Budget: &budget})
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("expected AuthorizationError for Bob, got %v", err)
	}
	if bob.Token() == "" {
		t.Error("an authorization error must not end the session")
	}

	updated, err := alice.UpdateSettings(ctx, ledgerapi.SettingsRequest{Budget: &budget})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if updated.Budget != 3000 {
		t.Errorf("expected budget 3000, got %v", updated.Budget)
	}
	if cached := alice.Cached(); cached == nil || cached.Group.Budget != 3000 {
		t.Errorf("expected cached group to carry new budget")
	}

	summary, err := alice.Summary(ctx, "all")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Window != "all" || summary.Total != 42 || summary.BudgetUsage != 1.4 {
		t.Errorf("unexpected summary total=%v usage=%v", summary.Total, summary.BudgetUsage)
	}
}

func TestStoreCacheLifecycle(t *testing.T) {
	c := setupTestAPI(t)
	ctx := context.Background()
	alice := signUp(t, c, "Alice", "alice@example.com")

	if alice.Cached() != nil {
		t.Fatal("expected empty cache after sign up")
	}

	snap, err := alice.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Group != nil || len(snap.Expenses) != 0 || len(snap.Bills) != 0 {
		t.Errorf("expected empty snapshot for ungrouped user, got %+v", snap)
	}

	again, err := alice.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if again != snap {
		t.Error("expected Load to return the cached snapshot")
	}

	if _, err := alice.CreateGroup(ctx, "Smiths"); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if cached := alice.Cached(); cached == nil || cached == snap || cached.Group == nil {
		t.Error("expected group change to replace the cache")
	}

	bill, err := alice.AddBill(ctx, ledgerapi.BillRequest{Title: "Rent", Amount: 1000, DueDate: time.Now().Format(ledgerapi.DateLayout)})
	if err != nil {
		t.Fatalf("AddBill failed: %v", err)
	}
	if cached := alice.Cached(); len(cached.Bills) != 1 || cached.Bills[0].Status != "Due Today" {
		t.Errorf("expected cached bill due today, got %+v", cached.Bills)
	}

	if _, err := alice.TogglePin(ctx, bill.ID); err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if cached := alice.Cached(); !cached.Bills[0].IsPinned {
		t.Error("expected cached bill to be pinned")
	}

	if err := alice.DeleteBill(ctx, bill.ID); err != nil {
		t.Fatalf("DeleteBill failed: %v", err)
	}
	if cached := alice.Cached(); len(cached.Bills) != 0 {
		t.Errorf("expected no cached bills, got %d", len(cached.Bills))
	}

	snap, err = alice.LeaveGroup(ctx)
	if err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	if snap.Group != nil || snap.User.GroupID != nil || snap.User.Role != "admin" {
		t.Errorf("expected ungrouped admin after leaving, got %+v", snap.User)
	}

	alice.Logout()
	if alice.Token() != "" || alice.User() != nil || alice.Cached() != nil {
		t.Error("expected logout to clear session and cache")
	}
	if _, err := alice.Load(ctx); !IsAuthError(err) {
		t.Errorf("expected auth error when signed out, got %v", err)
	}
}

func TestGroupChangeDuringRefresh(t *testing.T) {
	var slow atomic.Bool
	h := newTestHandler(t)
	// Slow reads answer with the state from when they arrived.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
		if r.Method == http.MethodGet && slow.Load() {
			time.Sleep(300 * time.Millisecond)
		}
	}))
	t.Cleanup(ts.Close)

	ctx := context.Background()
	alice := signUp(t, New(ts.URL, WithHTTPClient(ts.Client())), "Alice", "alice@example.com")

	slow.Store(true)
	done := make(chan error, 1)
	go func() {
		_, err := alice.Refresh(ctx)
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)

	group, err := alice.CreateGroup(ctx, "Smiths")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	cached := alice.Cached()
	if cached == nil || cached.Group == nil || cached.Group.ID != group.ID {
		t.Fatalf("expected cache to hold the new group, got %+v", cached)
	}
	if cached.User.GroupID == nil || *cached.User.GroupID != group.ID {
		t.Errorf("expected cached user in group %s, got %v", group.ID, cached.User.GroupID)
	}
}

func TestStoreEndsSessionOnAuthError(t *testing.T) {
	c := setupTestAPI(t)
	ctx := context.Background()

	s := NewStore(c)
	s.startSession(&ledgerapi.AuthResponse{User: ledgerapi.User{ID: "ghost"}, Token: "forged-token"})

	_, err := s.Refresh(ctx)
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if s.Token() != "" || s.User() != nil {
		t.Error("expected session to be cleared")
	}
}

func TestLoginAndProfile(t *testing.T) {
	c := setupTestAPI(t)
	ctx := context.Background()
	signUp(t, c, "Alice", "alice@example.com")

	s := NewStore(c)
	if err := s.Login(ctx, "alice", "wrong-password"); apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
	if err := s.Login(ctx, "alice@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	avatar := "fox"
	if err := s.UpdateProfile(ctx, ledgerapi.ProfileRequest{Avatar: &avatar}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if s.User().Avatar != "fox" || s.Token() == "" {
		t.Errorf("unexpected user after profile update %+v", s.User())
	}

	_, err := s.Summary(ctx, "fortnight")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected ValidationError for unknown window, got %v", err)
	}
}
