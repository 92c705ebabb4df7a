package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/viewtube/internal/server/handlers"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/internal/token"
)

// AuthMiddleware создает middleware для проверки access токена.
// Токен берется из cookie accessToken, затем из заголовка Authorization.
// Загруженный пользователь кладется в контекст под handlers.UserKey.
func AuthMiddleware(logger *slog.Logger, codec *token.Codec, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractAccessToken(r)
			if tokenString == "" {
				logger.Warn("missing access token")
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			ctx, err := authenticate(r.Context(), codec, users, tokenString)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					logger.Warn("expired access token")
					// Отдельное сообщение: клиент может пойти на refresh
					http.Error(w, "Unauthorized: token expired", http.StatusUnauthorized)
					return
				}
				logger.Warn("invalid access token", slog.Any("error", err))
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware аутентифицирует запрос, если токен есть и валиден,
// но пропускает анонимные запросы дальше. Нужен публичным endpoint'ам,
// которые персонализируют ответ для залогиненного зрителя.
func OptionalAuthMiddleware(logger *slog.Logger, codec *token.Codec, users storage.UserStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractAccessToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := authenticate(r.Context(), codec, users, tokenString)
			if err != nil {
				// Битый токен не валит публичный запрос
				logger.Debug("ignoring invalid access token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractAccessToken ищет токен сначала в cookie, потом в Authorization
func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(handlers.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	// Ожидаем формат: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}

// authenticate валидирует токен и перечитывает пользователя из хранилища,
// чтобы удаленный аккаунт не продолжал жить на старом токене
func authenticate(
	ctx context.Context,
	codec *token.Codec,
	users storage.UserStorage,
	tokenString string,
) (context.Context, error) {
	claims, err := codec.Verify(tokenString, token.Access)
	if err != nil {
		return nil, err
	}

	user, err := users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return context.WithValue(ctx, handlers.UserKey, user.Public()), nil
}
