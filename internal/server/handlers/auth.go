package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/viewtube/internal/server/auth"
	"github.com/iudanet/viewtube/internal/server/blob"
	"github.com/iudanet/viewtube/pkg/api"
)

const (
	// AccessTokenCookie имя cookie с access токеном
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie имя cookie с refresh токеном
	RefreshTokenCookie = "refreshToken"

	// maxUploadSize ограничивает размер multipart формы регистрации
	maxUploadSize = 10 << 20 // 10 MiB
)

// AuthHandler обрабатывает запросы жизненного цикла сессии
type AuthHandler struct {
	logger     *slog.Logger
	sessions   *auth.Service
	blobs      blob.Store
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, sessions *auth.Service, blobs blob.Store, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		logger:     logger,
		sessions:   sessions,
		blobs:      blobs,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Multipart форма: full_name, email, username, password + файлы
// avatar (обязателен) и cover_image (опционален)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendError(h.logger, w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	avatarURL, err := h.uploadFormFile(r, "avatar", "avatars")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			sendError(h.logger, w, "avatar file is required", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "avatar upload failed", slog.Any("error", err))
		sendError(h.logger, w, "failed to store avatar", http.StatusInternalServerError)
		return
	}

	// Обложка опциональна: отсутствие файла не ошибка
	coverURL, err := h.uploadFormFile(r, "cover_image", "covers")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			h.logger.ErrorContext(ctx, "cover upload failed", slog.Any("error", err))
			sendError(h.logger, w, "failed to store cover image", http.StatusInternalServerError)
			return
		}
		coverURL = ""
	}

	public, err := h.sessions.Register(ctx, auth.RegisterInput{
		FullName:      r.FormValue("full_name"),
		Email:         r.FormValue("email"),
		Username:      r.FormValue("username"),
		Password:      r.FormValue("password"),
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	})
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	resp := api.RegisterResponse{
		User:    toAPIUser(public),
		Message: "user registered successfully",
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация по username или email
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, public, err := h.sessions.Login(ctx, req.Login, req.Password)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	h.setAuthCookies(w, pair)

	resp := api.LoginResponse{
		User:         toAPIUser(public),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(h.accessTTL.Seconds()),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Требует авторизации; чистит сохраненный refresh token и cookies
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Logout(ctx, user.ID); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Refresh token берется из cookie, иначе из тела запроса
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	presented := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req api.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.sessions.RefreshSession(ctx, presented)
	if err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	h.setAuthCookies(w, pair)

	resp := api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(h.accessTTL.Seconds()),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// ChangePassword обрабатывает POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := UserFromContext(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.sessions.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		sendServiceError(h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, map[string]string{"message": "password changed successfully"}, http.StatusOK)
}

// uploadFormFile загружает файл из multipart формы в blob storage и
// возвращает его URL
func (h *AuthHandler) uploadFormFile(r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	return uploadBlob(r, h.blobs, file, header, prefix)
}

// uploadBlob читает файл и кладет его в blob storage под уникальным ключом
func uploadBlob(r *http.Request, blobs blob.Store, file multipart.File, header *multipart.FileHeader, prefix string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), path.Ext(header.Filename))
	return blobs.Upload(r.Context(), key, contentType, data)
}

// setAuthCookies выставляет пару httpOnly+secure cookies
func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookies чистит обе cookies
func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
