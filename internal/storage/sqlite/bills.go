package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

const billColumns = `id, title, description, amount, due_date, is_pinned, user_id, group_id, created_at`

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	var due int64
	err := row.Scan(
		&bill.ID,
		&bill.Title,
		&bill.Description,
		&bill.Amount,
		&due,
		&bill.IsPinned,
		&bill.UserID,
		&bill.GroupID,
		&bill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	bill.DueDate = unixToTime(due)
	return bill, nil
}

// CreateBill persists a new bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, bill.Description, bill.Amount, bill.DueDate.Unix(),
		bill.IsPinned, bill.UserID, bill.GroupID, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ?`, billID))
	if err != nil {
		return nil, notFound(err, "bill", billID)
	}
	return bill, nil
}

// ListBillsByGroup retrieves all bills for a group in storage order. Display order is
// computed by the reminder package on every listing.
func (s *SQLiteStore) ListBillsByGroup(ctx context.Context, groupID string) ([]*models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE group_id = ? ORDER BY created_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by group: %w", err)
	}
	defer rows.Close()

	bills := []*models.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	return bills, nil
}

// ToggleBillPin flips is_pinned without a read-modify-write round trip.
func (s *SQLiteStore) ToggleBillPin(ctx context.Context, billID string) (*models.Bill, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bill, err := scanBill(s.db.QueryRowContext(ctx,
		`UPDATE bills SET is_pinned = NOT is_pinned WHERE id = ? RETURNING `+billColumns, billID))
	if err != nil {
		return nil, notFound(err, "bill", billID)
	}
	return bill, nil
}

// DeleteBill removes a bill by ID.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}
