package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/events"
	"github.com/mmynk/familyledger/internal/membership"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/reminder"
	"github.com/mmynk/familyledger/internal/storage"
)

// BillInput holds the caller-supplied fields of a new bill reminder.
type BillInput struct {
	Title       string
	Description string
	Amount      float64
	DueDate     time.Time
}

// BillService manages bill reminders.
type BillService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, publisher events.Publisher) *BillService {
	return &BillService{store: store, publisher: publisher}
}

// AddBill records a bill reminder in the actor's current group.
func (s *BillService) AddBill(ctx context.Context, actor *models.User, in BillInput) (*models.Bill, error) {
	slog.Info("AddBill request received",
		"user_id", actor.ID,
		"group_id", actor.GroupID,
		"title", in.Title,
		"due_date", in.DueDate,
	)

	if !actor.InGroup() {
		return nil, apperr.Validation("join or create a group before adding bills")
	}

	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return nil, apperr.Validation("title is required")
	case in.Amount <= 0:
		return nil, apperr.Validation("amount must be greater than zero")
	case in.DueDate.IsZero():
		return nil, apperr.Validation("due date is required")
	}

	bill := &models.Bill{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		UserID:      actor.ID,
		GroupID:     actor.GroupID,
		CreatedAt:   time.Now().Unix(),
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("AddBill failed", "error", err)
		return nil, storeError(err, "group not found")
	}

	slog.Info("Bill added", "bill_id", bill.ID, "group_id", bill.GroupID)
	publish(ctx, s.publisher, events.New(events.BillAdded, bill.GroupID, actor.ID, bill.ID))
	return bill, nil
}

// ListBills returns the group's bills in display order with their status at now.
func (s *BillService) ListBills(ctx context.Context, groupID string, now time.Time) ([]reminder.Entry, error) {
	if groupID == "" {
		return []reminder.Entry{}, nil
	}

	bills, err := s.store.ListBillsByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListBills failed", "group_id", groupID, "error", err)
		return nil, storeError(err, "group not found")
	}

	return reminder.Arrange(bills, now), nil
}

// groupBill loads a bill visible to the actor. Bills of other groups are reported as
// missing.
func (s *BillService) groupBill(ctx context.Context, actor *models.User, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, storeError(err, "bill not found")
	}
	if !membership.Resolve(actor).CanAccessGroup(bill.GroupID) {
		return nil, apperr.NotFound("bill not found")
	}
	return bill, nil
}

// TogglePin flips the bill's pinned flag and returns the updated bill.
func (s *BillService) TogglePin(ctx context.Context, actor *models.User, billID string) (*models.Bill, error) {
	slog.Info("TogglePin request received", "user_id", actor.ID, "bill_id", billID)

	if _, err := s.groupBill(ctx, actor, billID); err != nil {
		slog.Warn("TogglePin failed", "bill_id", billID, "error", err)
		return nil, err
	}

	bill, err := s.store.ToggleBillPin(ctx, billID)
	if err != nil {
		slog.Error("TogglePin failed", "bill_id", billID, "error", err)
		return nil, storeError(err, "bill not found")
	}

	slog.Info("Bill pin toggled", "bill_id", bill.ID, "pinned", bill.IsPinned)
	publish(ctx, s.publisher, events.New(events.BillPinToggled, bill.GroupID, actor.ID, bill.ID))
	return bill, nil
}

// DeleteBill removes a bill. Any member of the bill's group may delete it.
func (s *BillService) DeleteBill(ctx context.Context, actor *models.User, billID string) error {
	slog.Info("DeleteBill request received", "user_id", actor.ID, "bill_id", billID)

	bill, err := s.groupBill(ctx, actor, billID)
	if err != nil {
		slog.Warn("DeleteBill failed", "bill_id", billID, "error", err)
		return err
	}

	if err := s.store.DeleteBill(ctx, billID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return storeError(err, "bill not found")
	}

	slog.Info("Bill deleted", "bill_id", billID)
	publish(ctx, s.publisher, events.New(events.BillDeleted, bill.GroupID, actor.ID, billID))
	return nil
}
