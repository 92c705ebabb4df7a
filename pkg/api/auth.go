// Package api содержит DTO запросов и ответов HTTP API.
// Используется и сервером, и CLI клиентом.
package api

import "time"

// PublicUser — наружное представление пользователя.
// Хеш пароля и refresh token сюда не попадают никогда.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LoginRequest представляет запрос на аутентификацию
// Login принимает username или email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ на успешный логин
type LoginResponse struct {
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"` // время жизни access token в секундах
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	User    PublicUser `json:"user"`
	Message string     `json:"message"`
}

// RefreshRequest несет refresh token, если клиент не использует cookie
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse представляет ответ с новой парой токенов
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ChangePasswordRequest представляет запрос на смену пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // текст HTTP статуса
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
