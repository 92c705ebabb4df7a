package storage

import (
	"context"

	"github.com/iudanet/viewtube/internal/models"
)

// UserStorage defines interface for user data persistence.
// The stored refresh token lives on the user record: at most one valid
// refresh token per user at a time.
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username or email is taken
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByLogin retrieves user by username or email.
	// The login is matched against both columns; username comparison is
	// done on the lowercased value.
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// SetRefreshToken unconditionally overwrites the stored refresh
	// token ("" clears it, used by logout)
	// Returns ErrUserNotFound if user doesn't exist
	SetRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken replaces the stored refresh token with newToken
	// only if the stored value still equals oldToken. The compare and
	// the swap are a single conditional update, so of two concurrent
	// rotations exactly one succeeds.
	// Returns ErrTokenMismatch if the stored value differs from oldToken
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error

	// UpdatePasswordHash stores a new password hash
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error

	// UpdateAccountDetails updates full name and email
	// Returns ErrUserNotFound if user doesn't exist,
	// ErrUserAlreadyExists if the new email is taken
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) error

	// UpdateAvatar stores a new avatar URL
	// Returns ErrUserNotFound if user doesn't exist
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error

	// UpdateCoverImage stores a new cover image URL
	// Returns ErrUserNotFound if user doesn't exist
	UpdateCoverImage(ctx context.Context, userID, coverURL string) error
}
