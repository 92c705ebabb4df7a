package storage

import (
	"context"
	"time"
)

// SessionStorage defines interface for storing the current session on client.
// Tokens are stored as issued by the server; the file lives under the user's
// home directory with 0600 permissions.
type SessionStorage interface {
	// SaveSession stores the session, replacing any previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if no session exists
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error

	// IsAuthenticated checks if a session exists and its access token
	// has not expired yet
	IsAuthenticated(ctx context.Context) (bool, error)
}

// Session represents the logged-in state of the CLI
type Session struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
