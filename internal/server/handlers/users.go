package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/viewtube/internal/server/blob"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/internal/validation"
	"github.com/iudanet/viewtube/pkg/api"
)

// watchHistoryLimit ограничивает размер выдачи истории просмотров
const watchHistoryLimit = 100

// UsersHandler обрабатывает запросы профиля и read-model запросы
// по социальному графу (профиль канала, история просмотров)
type UsersHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	profiles storage.ProfileStorage
	blobs    blob.Store
}

// NewUsersHandler создает новый handler профиля
func NewUsersHandler(logger *slog.Logger, users storage.UserStorage, profiles storage.ProfileStorage, blobs blob.Store) *UsersHandler {
	return &UsersHandler{
		logger:   logger,
		users:    users,
		profiles: profiles,
		blobs:    blobs,
	}
}

// Me обрабатывает GET /api/v1/users/me
// Возвращает публичную проекцию текущего пользователя
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// UpdateAccount обрабатывает PATCH /api/v1/users/me
// Обновляет full name и email
func (h *UsersHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.RequireNonBlank("full_name", req.FullName); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateAccountDetails(ctx, user.ID, strings.TrimSpace(req.FullName), email); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	h.respondWithUser(w, r, user.ID)
}

// UpdateAvatar обрабатывает PATCH /api/v1/users/me/avatar
// Multipart форма с файлом avatar
func (h *UsersHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", h.users.UpdateAvatar)
}

// UpdateCoverImage обрабатывает PATCH /api/v1/users/me/cover
// Multipart форма с файлом cover_image
func (h *UsersHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "cover_image", "covers", h.users.UpdateCoverImage)
}

func (h *UsersHandler) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field, prefix string,
	update func(ctx context.Context, userID, url string) error,
) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendError(h.logger, w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		sendError(h.logger, w, field+" file is required", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	url, err := uploadBlob(r, h.blobs, file, header, prefix)
	if err != nil {
		h.logger.ErrorContext(ctx, "upload failed", slog.Any("error", err))
		sendError(h.logger, w, "failed to store file", http.StatusInternalServerError)
		return
	}

	if err := update(ctx, user.ID, url); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	h.respondWithUser(w, r, user.ID)
}

// ChannelProfile обрабатывает GET /api/v1/users/channel/{username}
// Публичный endpoint: зритель опционален
func (h *UsersHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := r.PathValue("username")
	if username == "" {
		sendError(h.logger, w, "username is required", http.StatusBadRequest)
		return
	}

	viewerID := ""
	if viewer, ok := UserFromContext(ctx); ok {
		viewerID = viewer.ID
	}

	profile, err := h.profiles.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := api.ChannelProfileResponse{
		PublicUser: api.PublicUser{
			ID:            profile.ID,
			Username:      profile.Username,
			Email:         profile.Email,
			FullName:      profile.FullName,
			AvatarURL:     profile.AvatarURL,
			CoverImageURL: profile.CoverImageURL,
			CreatedAt:     profile.CreatedAt,
		},
		SubscriberCount:   profile.SubscriberCount,
		SubscribedToCount: profile.SubscribedToCount,
		IsSubscribed:      profile.IsSubscribed,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// WatchHistory обрабатывает GET /api/v1/users/history
func (h *UsersHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.profiles.GetWatchHistory(ctx, user.ID, watchHistoryLimit)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := make([]api.WatchHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, api.WatchHistoryEntry{
			Video: api.Video{
				ID:           entry.Video.ID,
				OwnerID:      entry.Video.OwnerID,
				Title:        entry.Video.Title,
				ThumbnailURL: entry.Video.ThumbnailURL,
				Duration:     entry.Video.Duration,
				Views:        entry.Video.Views,
				CreatedAt:    entry.Video.CreatedAt,
			},
			Owner:     toAPIUser(entry.Owner),
			WatchedAt: entry.WatchedAt,
		})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ToggleSubscription обрабатывает POST /api/v1/subscriptions/{channelID}
func (h *UsersHandler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	channelID := r.PathValue("channelID")
	if channelID == "" {
		sendError(h.logger, w, "channel id is required", http.StatusBadRequest)
		return
	}
	if channelID == user.ID {
		sendError(h.logger, w, "cannot subscribe to yourself", http.StatusBadRequest)
		return
	}

	subscribed, err := h.profiles.ToggleSubscription(ctx, user.ID, channelID)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := api.SubscriptionResponse{
		ChannelID:  channelID,
		Subscribed: subscribed,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// respondWithUser перечитывает пользователя и отдает свежую проекцию
func (h *UsersHandler) respondWithUser(w http.ResponseWriter, r *http.Request, userID string) {
	updated, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, toAPIUser(updated.Public()), http.StatusOK)
}
