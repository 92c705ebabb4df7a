package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/auth"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/pkg/api"
)

// contextKey — приватный тип ключей контекста запроса
type contextKey string

// UserKey хранит *models.PublicUser, положенный auth middleware
const UserKey contextKey = "user"

// UserFromContext returns the authenticated user attached by the auth
// middleware, or false when the request is anonymous.
func UserFromContext(ctx context.Context) (*models.PublicUser, bool) {
	user, ok := ctx.Value(UserKey).(*models.PublicUser)
	return user, ok
}

// toAPIUser конвертирует доменную проекцию в DTO
func toAPIUser(u *models.PublicUser) api.PublicUser {
	return api.PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// sendServiceError отображает ошибку сервиса/хранилища в HTTP статус.
// Всё, что не распознано, уходит наружу как 500 без деталей.
func sendServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		sendError(logger, w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrConflict), errors.Is(err, storage.ErrUserAlreadyExists):
		sendError(logger, w, err.Error(), http.StatusConflict)
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrVideoNotFound):
		sendError(logger, w, err.Error(), http.StatusNotFound)
	case errors.Is(err, auth.ErrTokenExpired):
		// Отличаем от обычного 401: клиент может пойти на refresh
		sendError(logger, w, "token expired", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrUnauthorized):
		sendError(logger, w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrStore):
		logger.Error("store failure", slog.Any("error", err))
		sendError(logger, w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		logger.Error("internal error", slog.Any("error", err))
		sendError(logger, w, "internal server error", http.StatusInternalServerError)
	}
}
