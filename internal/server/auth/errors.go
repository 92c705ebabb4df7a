package auth

import "errors"

// Ошибки уровня сервиса. Handlers отображают их в HTTP статусы,
// всё остальное считается внутренней ошибкой (500).
var (
	// ErrInvalidInput indicates a missing or blank required field
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a duplicate username or email on registration
	ErrConflict = errors.New("user with email or username already exists")

	// ErrNotFound indicates that no matching user exists
	ErrNotFound = errors.New("user does not exist")

	// ErrUnauthorized indicates a bad credential or a bad, missing,
	// mismatched or reused token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired indicates a correctly signed token past its
	// expiry. Kept distinct from ErrUnauthorized so clients can prompt
	// re-authentication instead of hard-rejecting.
	ErrTokenExpired = errors.New("token expired")

	// ErrStore indicates that the credential store failed
	ErrStore = errors.New("store failure")
)
