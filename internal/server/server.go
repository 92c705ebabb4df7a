// Package server собирает HTTP API: маршруты, middleware, graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/viewtube/internal/config"
	"github.com/iudanet/viewtube/internal/server/auth"
	"github.com/iudanet/viewtube/internal/server/blob"
	"github.com/iudanet/viewtube/internal/server/handlers"
	"github.com/iudanet/viewtube/internal/server/middleware"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/internal/token"
)

// shutdownTimeout — сколько ждем завершения in-flight запросов
const shutdownTimeout = 10 * time.Second

// Deps — все зависимости HTTP сервера, собранные в cmd/server
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Users    storage.UserStorage
	Profiles storage.ProfileStorage
	Blobs    blob.Store
	Codec    *token.Codec
	Sessions *auth.Service
	Health   handlers.Pinger
	Version  string
}

// Server оборачивает http.Server с собранным роутером
type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

// New собирает роутер и возвращает готовый к запуску сервер
func New(deps Deps) *Server {
	authHandler := handlers.NewAuthHandler(
		deps.Logger, deps.Sessions, deps.Blobs,
		deps.Codec.AccessTTL(), deps.Codec.RefreshTTL(),
	)
	usersHandler := handlers.NewUsersHandler(deps.Logger, deps.Users, deps.Profiles, deps.Blobs)
	healthHandler := handlers.NewHealthHandler(deps.Logger, deps.Version, deps.Health)

	guard := middleware.AuthMiddleware(deps.Logger, deps.Codec, deps.Users)
	optionalGuard := middleware.OptionalAuthMiddleware(deps.Logger, deps.Codec, deps.Users)
	// Кредентиальные endpoints прикрыты rate limit от перебора
	credLimit := middleware.RateLimitMiddleware(deps.Config.AuthRateLimit, deps.Config.AuthRateWindow, deps.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	mux.Handle("POST /api/v1/auth/register", credLimit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/v1/auth/login", credLimit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.Handle("POST /api/v1/auth/logout", guard(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/v1/auth/change-password", guard(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("GET /api/v1/users/me", guard(http.HandlerFunc(usersHandler.Me)))
	mux.Handle("PATCH /api/v1/users/me", guard(http.HandlerFunc(usersHandler.UpdateAccount)))
	mux.Handle("PATCH /api/v1/users/me/avatar", guard(http.HandlerFunc(usersHandler.UpdateAvatar)))
	mux.Handle("PATCH /api/v1/users/me/cover", guard(http.HandlerFunc(usersHandler.UpdateCoverImage)))
	mux.Handle("GET /api/v1/users/history", guard(http.HandlerFunc(usersHandler.WatchHistory)))

	// Профиль канала публичный: зритель опционален
	mux.Handle("GET /api/v1/users/channel/{username}", optionalGuard(http.HandlerFunc(usersHandler.ChannelProfile)))

	mux.Handle("POST /api/v1/subscriptions/{channelID}", guard(http.HandlerFunc(usersHandler.ToggleSubscription)))

	// Внешние middleware: recovery снаружи, чтобы ловить паники и в логгере
	var handler http.Handler = mux
	handler = middleware.LoggingWithSkip(deps.Logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(deps.Logger)(handler)

	return &Server{
		logger: deps.Logger,
		srv: &http.Server{
			Addr:              deps.Config.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run запускает сервер и блокируется до отмены контекста,
// затем делает graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	errC := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
