package models

import "time"

// User представляет пользователя в системе
//
// PasswordHash и RefreshToken никогда не сериализуются наружу,
// клиенту отдается только PublicUser.
type User struct {
	ID            string    `json:"id"`              // UUID пользователя
	Username      string    `json:"username"`        // уникальный username (lowercase)
	Email         string    `json:"email"`           // уникальный email
	FullName      string    `json:"full_name"`       // отображаемое имя
	AvatarURL     string    `json:"avatar_url"`      // ссылка на аватар (обязателен)
	CoverImageURL string    `json:"cover_image_url"` // ссылка на обложку (опциональна)
	PasswordHash  string    `json:"-"`               // bcrypt хеш пароля
	RefreshToken  string    `json:"-"`               // текущий валидный refresh token ("" если нет)
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicUser is the outward-facing projection of a User.
// It never carries the password hash or the refresh token.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public returns the outward-facing projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}
