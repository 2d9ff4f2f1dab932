package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/calculator"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/membership"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

// ExpenseInput holds the caller-supplied fields of a new expense.
type ExpenseInput struct {
	Title    string
	Amount   float64
	Category string
	// Date defaults to now when zero.
	Date time.Time
}

// ExpenseService manages the shared ledger.
type ExpenseService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, publisher events.Publisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

// AddExpense records an expense in the actor's current group.
func (s *ExpenseService) AddExpense(ctx context.Context, actor *models.User, in ExpenseInput) (*models.Expense, error) {
	slog.Info("AddExpense request received",
		"user_id", actor.ID,
		"group_id", actor.GroupID,
		"title", in.Title,
		"amount", in.Amount,
	)

	if !actor.InGroup() {
		return nil, apperr.Validation("join or create a group before adding expenses")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Title == "":
		return nil, apperr.Validation("title is required")
	case in.Category == "":
		return nil, apperr.Validation("category is required")
	case in.Amount <= 0:
		return nil, apperr.Validation("amount must be greater than zero")
	}

	now := time.Now()
	if in.Date.IsZero() {
		in.Date = now
	}

	expense := &models.Expense{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Amount:    in.Amount,
		Category:  in.Category,
		Date:      in.Date,
		UserID:    actor.ID,
		GroupID:   actor.GroupID,
		AddedBy:   actor.Name,
		CreatedAt: now.Unix(),
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "error", err)
		return nil, storeError(err, "group not found")
	}

	slog.Info("Expense added", "expense_id", expense.ID, "group_id", expense.GroupID)
	publish(ctx, s.publisher, events.New(events.ExpenseAdded, expense.GroupID, actor.ID, expense.ID))
	return expense, nil
}

// ListExpenses returns the group's expenses, newest first. An empty groupID has none.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if groupID == "" {
		return []*models.Expense{}, nil
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", groupID, "error", err)
		return nil, storeError(err, "group not found")
	}

	slog.Debug("ListExpenses successful", "group_id", groupID, "count", len(expenses))
	return expenses, nil
}

// DeleteExpense removes an expense. Owners may delete their own entries; the admin may
// delete any entry of the group they administer.
func (s *ExpenseService) DeleteExpense(ctx context.Context, actor *models.User, expenseID string) error {
	slog.Info("DeleteExpense request received", "user_id", actor.ID, "expense_id", expenseID)

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Warn("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return storeError(err, "expense not found")
	}

	if !membership.Resolve(actor).CanDeleteExpense(expense) {
		slog.Warn("DeleteExpense denied", "expense_id", expenseID, "user_id", actor.ID)
		return apperr.Authorization("you can only delete your own expenses")
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return storeError(err, "expense not found")
	}

	slog.Info("Expense deleted", "expense_id", expenseID)
	publish(ctx, s.publisher, events.New(events.ExpenseDeleted, expense.GroupID, actor.ID, expenseID))
	return nil
}

// Summary computes the analytics of the actor's group for the named window.
func (s *ExpenseService) Summary(ctx context.Context, actor *models.User, window string, now time.Time) (*calculator.Summary, error) {
	w, err := calculator.ParseWindow(window)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	var group *models.Group
	var expenses []*models.Expense
	if actor.InGroup() {
		group, err = s.store.GetGroup(ctx, actor.GroupID)
		if err != nil {
			slog.Error("Summary failed", "group_id", actor.GroupID, "error", err)
			return nil, storeError(err, "group not found")
		}
		expenses, err = s.store.ListExpensesByGroup(ctx, actor.GroupID)
		if err != nil {
			slog.Error("Summary failed", "group_id", actor.GroupID, "error", err)
			return nil, storeError(err, "group not found")
		}
	}

	summary := calculator.Summarize(expenses, group, w, now)
	return &summary, nil
}
