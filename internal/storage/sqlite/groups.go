package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

const groupColumns = `id, name, admin_id, invite_code, income, budget, created_at`

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(
		&group.ID,
		&group.Name,
		&group.AdminID,
		&group.InviteCode,
		&group.Income,
		&group.Budget,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// CreateGroupWithAdmin inserts the group and points its admin at it in one transaction.
func (s *SQLiteStore) CreateGroupWithAdmin(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (`+groupColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.AdminID, group.InviteCode, group.Income, group.Budget, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("invite code %s: %w", group.InviteCode, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET group_id = ?, role = ?, updated_at = ? WHERE id = ?`,
		group.ID, string(models.RoleAdmin), group.CreatedAt, group.AdminID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign group admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", group.AdminID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	group, err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = ?`, groupID))
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}
	return group, nil
}

// GetGroupByInviteCode retrieves the group owning an invite code.
func (s *SQLiteStore) GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	group, err := scanGroup(s.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE invite_code = ?`, code))
	if err != nil {
		return nil, notFound(err, "invite code", code)
	}
	return group, nil
}

// InviteCodeExists reports whether any group already uses code.
func (s *SQLiteStore) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE invite_code = ?`, code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return true, nil
}

// UpdateSettings applies a partial income/budget update as one statement, so two
// admins writing different fields at the same time never lose each other's update.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, groupID string, update models.SettingsUpdate) (*models.Group, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	group, err := scanGroup(s.db.QueryRowContext(ctx, `
		UPDATE groups SET
			income = COALESCE(?, income),
			budget = COALESCE(?, budget)
		WHERE id = ?
		RETURNING `+groupColumns,
		update.Income, update.Budget, groupID,
	))
	if err != nil {
		return nil, notFound(err, "group", groupID)
	}
	return group, nil
}
