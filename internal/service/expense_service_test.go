package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/calculator"
	"github.com/mmynk/familyledger/internal/models"
)

func TestAddExpense(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")

	date := time.Date(2026, 10, 1, 12, 0, 0, 0, time.Local)
	expense, err := env.expenses.AddExpense(ctx, alice, ExpenseInput{
		Title:    "Groceries",
		Amount:   42.5,
		Category: "Food",
		Date:     date,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if expense.GroupID != smiths.ID || expense.UserID != alice.ID {
		t.Errorf("expected binding to %s/%s, got %s/%s", smiths.ID, alice.ID, expense.GroupID, expense.UserID)
	}
	if expense.AddedBy != "Alice" {
		t.Errorf("expected addedBy Alice, got %q", expense.AddedBy)
	}
	if !expense.Date.Equal(date) {
		t.Errorf("expected date %v, got %v", date, expense.Date)
	}

	t.Run("defaults date to now", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		e, err := env.expenses.AddExpense(ctx, alice, ExpenseInput{Title: "Coffee", Amount: 3, Category: "Food"})
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
		if e.Date.Before(before) {
			t.Errorf("expected date near now, got %v", e.Date)
		}
	})

	tests := []struct {
		name  string
		actor *models.User
		in    ExpenseInput
	}{
		{"no group", env.newUser(t, "Eve"), ExpenseInput{Title: "x", Amount: 1, Category: "c"}},
		{"empty title", alice, ExpenseInput{Title: " ", Amount: 1, Category: "c"}},
		{"empty category", alice, ExpenseInput{Title: "x", Amount: 1}},
		{"zero amount", alice, ExpenseInput{Title: "x", Amount: 0, Category: "c"}},
		{"negative amount", alice, ExpenseInput{Title: "x", Amount: -5, Category: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.AddExpense(ctx, tt.actor, tt.in)
			assertKind(t, err, apperr.KindValidation)
		})
	}
}

func TestAddedBySnapshotSurvivesRename(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")

	if _, err := env.expenses.AddExpense(ctx, alice, ExpenseInput{Title: "Rent", Amount: 1000, Category: "Housing"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if _, err := env.store.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Name: ptr("Alicia")}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	expenses, err := env.expenses.ListExpenses(ctx, smiths.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if expenses[0].AddedBy != "Alice" {
		t.Errorf("expected snapshot Alice, got %q", expenses[0].AddedBy)
	}
}

func TestListExpenses(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")
	dave, _ := env.newGroup(t, "Dave", "Joneses")

	day := func(d int) time.Time { return time.Date(2026, 10, d, 9, 0, 0, 0, time.Local) }
	for _, in := range []ExpenseInput{
		{Title: "first", Amount: 1, Category: "c", Date: day(1)},
		{Title: "third", Amount: 3, Category: "c", Date: day(3)},
		{Title: "second", Amount: 2, Category: "c", Date: day(2)},
	} {
		if _, err := env.expenses.AddExpense(ctx, alice, in); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}
	if _, err := env.expenses.AddExpense(ctx, dave, ExpenseInput{Title: "other", Amount: 9, Category: "c"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	expenses, err := env.expenses.ListExpenses(ctx, smiths.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}

	var titles []string
	for _, e := range expenses {
		titles = append(titles, e.Title)
	}
	want := []string{"third", "second", "first"}
	if len(titles) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("expected %v, got %v", want, titles)
			break
		}
	}

	empty, err := env.expenses.ListExpenses(ctx, "")
	if err != nil || len(empty) != 0 {
		t.Errorf("expected no expenses for empty group, got %v, %v", empty, err)
	}
}

func TestDeleteExpense(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")
	bob := env.join(t, "Bob", smiths)
	carol := env.join(t, "Carol", smiths)
	dave, _ := env.newGroup(t, "Dave", "Joneses")

	add := func(actor *models.User) *models.Expense {
		t.Helper()
		e, err := env.expenses.AddExpense(ctx, actor, ExpenseInput{Title: "x", Amount: 10, Category: "c"})
		if err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
		return e
	}

	t.Run("owner", func(t *testing.T) {
		if err := env.expenses.DeleteExpense(ctx, bob, add(bob).ID); err != nil {
			t.Errorf("owner delete failed: %v", err)
		}
	})

	t.Run("other member", func(t *testing.T) {
		e := add(bob)
		assertKind(t, env.expenses.DeleteExpense(ctx, carol, e.ID), apperr.KindAuthorization)
		if _, err := env.store.GetExpense(ctx, e.ID); err != nil {
			t.Errorf("expense should still exist: %v", err)
		}
	})

	t.Run("group admin", func(t *testing.T) {
		if err := env.expenses.DeleteExpense(ctx, alice, add(bob).ID); err != nil {
			t.Errorf("admin delete failed: %v", err)
		}
	})

	t.Run("admin of another group", func(t *testing.T) {
		assertKind(t, env.expenses.DeleteExpense(ctx, dave, add(bob).ID), apperr.KindAuthorization)
	})

	t.Run("owner after leaving", func(t *testing.T) {
		e := add(carol)
		if err := env.groups.LeaveGroup(ctx, carol); err != nil {
			t.Fatalf("LeaveGroup failed: %v", err)
		}
		if err := env.expenses.DeleteExpense(ctx, env.reload(t, carol), e.ID); err != nil {
			t.Errorf("owner delete after leaving failed: %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		assertKind(t, env.expenses.DeleteExpense(ctx, alice, "missing"), apperr.KindNotFound)
	})
}

func TestExpensesStayWithTheirGroup(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	_, smiths := env.newGroup(t, "Alice", "Smiths")
	_, joneses := env.newGroup(t, "Dave", "Joneses")
	bob := env.join(t, "Bob", smiths)

	if _, err := env.expenses.AddExpense(ctx, bob, ExpenseInput{Title: "Gas", Amount: 30, Category: "Car"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if _, err := env.groups.JoinGroup(ctx, bob, joneses.InviteCode); err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}

	old, _ := env.expenses.ListExpenses(ctx, smiths.ID)
	current, _ := env.expenses.ListExpenses(ctx, joneses.ID)
	if len(old) != 1 || len(current) != 0 {
		t.Errorf("expected expense to stay with smiths, got %d/%d", len(old), len(current))
	}
}

func TestSummary(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")
	bob := env.join(t, "Bob", smiths)

	if _, err := env.groups.UpdateSettings(ctx, alice, models.SettingsUpdate{Income: ptr(5000.0), Budget: ptr(3000.0)}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}

	now := time.Now()
	for _, tc := range []struct {
		actor  *models.User
		amount float64
		cat    string
	}{
		{alice, 100, "Food"},
		{bob, 50, "Food"},
		{bob, 150, "Utilities"},
	} {
		if _, err := env.expenses.AddExpense(ctx, tc.actor, ExpenseInput{Title: "x", Amount: tc.amount, Category: tc.cat, Date: now}); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	summary, err := env.expenses.Summary(ctx, alice, "this-month", now)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 300 || summary.Remaining != 4700 || summary.BudgetUsage != 10 {
		t.Errorf("unexpected totals: %+v", summary)
	}
	if len(summary.Categories) != 2 || len(summary.Members) != 2 {
		t.Errorf("unexpected breakdowns: %+v / %+v", summary.Categories, summary.Members)
	}

	t.Run("invalid window", func(t *testing.T) {
		_, err := env.expenses.Summary(ctx, alice, "fortnight", now)
		assertKind(t, err, apperr.KindValidation)
	})

	t.Run("ungrouped user", func(t *testing.T) {
		summary, err := env.expenses.Summary(ctx, env.newUser(t, "Eve"), "", now)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.Window != calculator.WindowAll || summary.Count != 0 || summary.BudgetUsage != 0 {
			t.Errorf("expected empty summary, got %+v", summary)
		}
	})
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	alice, smiths := env.newGroup(t, "Alice", "Smiths")
	env.publisher.err = errors.New("broker down")

	if _, err := env.expenses.AddExpense(ctx, alice, ExpenseInput{Title: "x", Amount: 1, Category: "c"}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	expenses, _ := env.expenses.ListExpenses(ctx, smiths.ID)
	if len(expenses) != 1 {
		t.Errorf("expected expense to be stored, got %d", len(expenses))
	}
}
