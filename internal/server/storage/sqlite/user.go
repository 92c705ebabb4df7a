package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/storage"
)

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url,
		password_hash, refresh_token, created_at, updated_at`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.AvatarURL,
		user.CoverImageURL,
		user.PasswordHash,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Duplicate username или email
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByLogin retrieves user by username or email
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = ? OR email = ?
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, strings.ToLower(login), login))
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.PasswordHash,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SetRefreshToken unconditionally overwrites the stored refresh token
func (s *Storage) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, token, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}

	return s.requireRow(result, storage.ErrUserNotFound)
}

// RotateRefreshToken replaces the stored refresh token only if it still
// equals oldToken. Compare-and-swap in a single UPDATE: of two
// concurrent rotations against the same stored value exactly one
// matches, the other sees zero affected rows.
func (s *Storage) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	query := `
		UPDATE users
		SET refresh_token = ?, updated_at = ?
		WHERE id = ? AND refresh_token = ?
	`

	result, err := s.db.ExecContext(ctx, query, newToken, time.Now(), userID, oldToken)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.requireRow(result, storage.ErrTokenMismatch)
}

// UpdatePasswordHash stores a new password hash
func (s *Storage) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	return s.requireRow(result, storage.ErrUserNotFound)
}

// UpdateAccountDetails updates full name and email
func (s *Storage) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) error {
	query := `UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, fullName, email, time.Now(), userID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update account details: %w", err)
	}

	return s.requireRow(result, storage.ErrUserNotFound)
}

// UpdateAvatar stores a new avatar URL
func (s *Storage) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	query := `UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, avatarURL, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	return s.requireRow(result, storage.ErrUserNotFound)
}

// UpdateCoverImage stores a new cover image URL
func (s *Storage) UpdateCoverImage(ctx context.Context, userID, coverURL string) error {
	query := `UPDATE users SET cover_image_url = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, coverURL, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update cover image: %w", err)
	}

	return s.requireRow(result, storage.ErrUserNotFound)
}

// requireRow проверяет, что UPDATE затронул хотя бы одну строку
func (s *Storage) requireRow(result sql.Result, missing error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return missing
	}

	return nil
}
