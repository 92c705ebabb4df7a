// Package auth управляет сессией CLI: логин, выход,
// хранение и обновление пары токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/viewtube/internal/client/api"
	"github.com/iudanet/viewtube/internal/client/storage"
	"github.com/iudanet/viewtube/internal/validation"
	pkgapi "github.com/iudanet/viewtube/pkg/api"
)

// ErrNotAuthenticated возвращается, когда нет сохраненной сессии
var ErrNotAuthenticated = errors.New("not authenticated, please login first")

// APIClient — серверные вызовы, нужные сессионному сервису.
// Вынесен в интерфейс, чтобы тесты могли подменить транспорт.
type APIClient interface {
	Register(ctx context.Context, input api.RegisterInput) (*pkgapi.RegisterResponse, error)
	Login(ctx context.Context, login, password string) (*pkgapi.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Service предоставляет функции управления сессией
type Service struct {
	apiClient APIClient
	sessions  storage.SessionStorage
}

// NewService создает новый сервис сессии
func NewService(apiClient APIClient, sessions storage.SessionStorage) *Service {
	return &Service{
		apiClient: apiClient,
		sessions:  sessions,
	}
}

// Register регистрирует нового пользователя.
// Сессия при этом не создается: сервер требует отдельного логина.
func (s *Service) Register(ctx context.Context, input api.RegisterInput) (*pkgapi.PublicUser, error) {
	if err := validation.ValidateUsername(input.Username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	return &resp.User, nil
}

// Login аутентифицируется на сервере и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, login, password string) (*storage.Session, error) {
	resp, err := s.apiClient.Login(ctx, login, password)
	if err != nil {
		return nil, err
	}

	session := &storage.Session{
		UserID:       resp.User.ID,
		Username:     resp.User.Username,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// Logout инвалидирует сессию на сервере и удаляет ее локально.
// Локальная сессия чистится даже если сервер недоступен.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrNotAuthenticated
		}
		return err
	}

	serverErr := s.apiClient.Logout(ctx, session.AccessToken)

	if err := s.sessions.DeleteSession(ctx); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if serverErr != nil {
		return fmt.Errorf("session cleared locally, server logout failed: %w", serverErr)
	}

	return nil
}

// Refresh принудительно меняет пару токенов и сохраняет новую сессию
func (s *Service) Refresh(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return s.refreshSession(ctx, session)
}

// AccessToken возвращает действующий access token,
// обновляя пару если он истек
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", err
	}

	if time.Now().Before(session.ExpiresAt) {
		return session.AccessToken, nil
	}

	refreshed, err := s.refreshSession(ctx, session)
	if err != nil {
		return "", err
	}

	return refreshed.AccessToken, nil
}

// CurrentSession возвращает сохраненную сессию
func (s *Service) CurrentSession(ctx context.Context) (*storage.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) refreshSession(ctx context.Context, session *storage.Session) (*storage.Session, error) {
	resp, err := s.apiClient.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	session.AccessToken = resp.AccessToken
	session.RefreshToken = resp.RefreshToken
	session.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save refreshed session: %w", err)
	}

	return session, nil
}
