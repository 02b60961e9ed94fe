package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paywise/paywise/internal/models"
	"github.com/paywise/paywise/internal/storage"
)

const userColumns = "id, email, name, password_hash, qr_code_url, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.QRCodeURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Name, user.PasswordHash, user.QRCodeURL,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// ListUsers returns all users except excludeID, ordered by name.
func (s *SQLiteStore) ListUsers(ctx context.Context, excludeID string) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id != ? ORDER BY name", excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// SearchUsers returns users whose name or email contains query, excluding
// excludeID.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query, excludeID string) ([]*models.User, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id != ? AND (name LIKE ? OR email LIKE ?)
		 ORDER BY name`,
		excludeID, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// UpdateUserProfile updates the mutable profile fields.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, id, name, qrCodeURL string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = ?, qr_code_url = ?, updated_at = ? WHERE id = ?",
		name, qrCodeURL, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check profile update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func collectUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
