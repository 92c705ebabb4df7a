package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with this username or
	// email already exists (unique constraint violation)
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenMismatch indicates that a conditional refresh-token update
	// did not match the stored value: the token was rotated away or
	// cleared by logout
	ErrTokenMismatch = errors.New("refresh token mismatch")

	// ErrVideoNotFound indicates that video was not found in storage
	ErrVideoNotFound = errors.New("video not found")
)
