package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/storage"
)

const userColumns = `id, name, handle, email, password_hash, role, group_id, currency, avatar, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var role string
	var groupID sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Handle,
		&user.Email,
		&user.PasswordHash,
		&role,
		&groupID,
		&user.Currency,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	user.GroupID = groupID.String
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Handle,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		nullableString(user.GroupID),
		user.Currency,
		user.Avatar,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

// GetUserByHandle retrieves a user by their login handle.
func (s *SQLiteStore) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.getUserBy(ctx, "handle", handle)
}

// getUserBy looks a user up by one of its unique columns. column is never user input.
func (s *SQLiteStore) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", value)
	}
	return user, nil
}

// UpdateProfile applies the non-nil profile fields in one statement.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			name = COALESCE(?, name),
			avatar = COALESCE(?, avatar),
			currency = COALESCE(?, currency),
			updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		update.Name, update.Avatar, update.Currency, time.Now().Unix(), userID,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	return user, nil
}

// SetMembership sets group_id and role in a single UPDATE so concurrent membership
// changes never interleave a read and a write.
func (s *SQLiteStore) SetMembership(ctx context.Context, userID, groupID string, role models.Role) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET group_id = ?, role = ?, updated_at = ? WHERE id = ?`,
		nullableString(groupID), string(role), time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set membership: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	return nil
}

// ListMembers returns every user whose group_id matches, without credential data.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role, avatar FROM users WHERE group_id = ? ORDER BY created_at, name`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &role, &m.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}
