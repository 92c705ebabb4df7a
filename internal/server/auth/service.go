// Package auth реализует жизненный цикл сессии: регистрацию, логин,
// выход, ротацию refresh токена и смену пароля.
//
// Инвариант: у пользователя в каждый момент не больше одного валидного
// refresh токена. Ротация выполняется условной записью в хранилище,
// поэтому из двух конкурентных refresh запросов выигрывает ровно один.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/internal/token"
	"github.com/iudanet/viewtube/internal/validation"
)

// TokenPair is the access+refresh pair returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterInput carries the registration fields. Avatar is mandatory,
// cover image is optional; both arrive as already-uploaded URLs.
type RegisterInput struct {
	FullName      string
	Email         string
	Username      string
	Password      string
	AvatarURL     string
	CoverImageURL string
}

// Service является ядром управления сессиями
type Service struct {
	logger *slog.Logger
	users  storage.UserStorage
	codec  *token.Codec
	hasher Hasher
}

// NewService создает новый session service
func NewService(logger *slog.Logger, users storage.UserStorage, codec *token.Codec, hasher Hasher) *Service {
	return &Service{
		logger: logger,
		users:  users,
		codec:  codec,
		hasher: hasher,
	}
}

// Register creates a user if neither username nor email is taken and
// returns the public projection of the created user.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	fields := map[string]string{
		"full_name": in.FullName,
		"email":     in.Email,
		"username":  in.Username,
		"password":  in.Password,
	}
	for name, value := range fields {
		if err := validation.RequireNonBlank(name, value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	// Аватар обязателен, обложка — нет
	if in.AvatarURL == "" {
		return nil, fmt.Errorf("%w: avatar file is required", ErrInvalidInput)
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)

	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:            uuid.New().String(),
		Username:      username,
		Email:         email,
		FullName:      strings.TrimSpace(in.FullName),
		AvatarURL:     in.AvatarURL,
		CoverImageURL: in.CoverImageURL,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Дубликаты ловит UNIQUE constraint в хранилище: проверка до INSERT
	// не закрывала бы гонку между check и write
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username))

	return user.Public(), nil
}

// Login authenticates by username or email and issues a fresh token
// pair. The new refresh token unconditionally overwrites any previously
// stored one — login is a rotation point.
func (s *Service) Login(ctx context.Context, login, password string) (*TokenPair, *models.PublicUser, error) {
	if strings.TrimSpace(login) == "" {
		return nil, nil, fmt.Errorf("%w: username or email is required", ErrInvalidInput)
	}

	user, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.WarnContext(ctx, "login failed: invalid credentials",
			slog.String("user_id", user.ID))
		return nil, nil, fmt.Errorf("%w: invalid user credentials", ErrUnauthorized)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return pair, user.Public(), nil
}

// Logout clears the stored refresh token. Idempotent: a second logout is
// a no-op, and any previously issued refresh token stops verifying.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// RefreshSession validates the presented refresh token and rotates the
// pair. Signature validity alone is not enough: the token must also
// equal the value currently stored for the user, which is what makes
// rotated-away tokens unusable. The equality check and the overwrite are
// one conditional store write, so a concurrent refresh loser fails
// instead of silently overwriting the winner's token.
func (s *Service) RefreshSession(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrUnauthorized)
	}

	claims, err := s.codec.Verify(presented, token.Refresh)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: refresh token", ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	// CAS на предыдущем значении: повторное использование уже
	//"потраченного" токена детектируется здесь
	if err := s.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrTokenMismatch) {
			s.logger.WarnContext(ctx, "refresh token reuse detected",
				slog.String("user_id", user.ID))
			return nil, fmt.Errorf("%w: refresh token is expired or used", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.logger.InfoContext(ctx, "session refreshed", slog.String("user_id", user.ID))

	return pair, nil
}

// ChangePassword re-hashes and stores the new password after checking
// the old one. The current refresh token is intentionally left valid:
// that matches the shipped behavior, though rotating here would be the
// stricter policy.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, oldPassword); err != nil {
		return fmt.Errorf("%w: invalid old password", ErrUnauthorized)
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", userID))
	return nil
}

// issuePair выпускает новую пару токенов для пользователя
func (s *Service) issuePair(user *models.User) (*TokenPair, error) {
	accessToken, err := s.codec.IssueAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.codec.IssueRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
