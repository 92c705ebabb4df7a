// Package token реализует выпуск и проверку пары токенов:
// короткоживущий access token и долгоживущий refresh token.
// Оба — JWT (HS256) с разными секретами и разным временем жизни.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects which secret and TTL a token is issued or verified with.
type Kind int

const (
	// Access — короткоживущий токен для авторизации запросов
	Access Kind = iota
	// Refresh — долгоживущий токен для ротации пары
	Refresh
)

var (
	// ErrTokenInvalid indicates a malformed token or a bad signature.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired indicates a well-formed, correctly signed token
	// that is past its expiry. Callers treat this differently from
	// ErrTokenInvalid: expired access tokens prompt a refresh.
	ErrTokenExpired = errors.New("token expired")
)

// Claims представляет JWT claims приложения
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec issues and verifies the access/refresh token pair.
// Stateless: configured once at startup and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec creates a token codec.
// Secrets should be cryptographically random strings; access and refresh
// secrets must differ so one token kind can never pass as the other.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken создает новый access token для пользователя
func (c *Codec) IssueAccessToken(userID, username string) (string, error) {
	return c.issue(userID, username, c.accessSecret, c.accessTTL)
}

// IssueRefreshToken создает новый refresh token для пользователя
func (c *Codec) IssueRefreshToken(userID, username string) (string, error) {
	return c.issue(userID, username, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(userID, username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "viewtube",
			// jti делает каждый токен уникальным даже при выпуске
			// двух токенов в одну секунду (ротация требует != токена)
			ID: uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify validates the token against the secret for the given kind and
// returns its claims. Returns ErrTokenExpired for a correctly signed but
// stale token and ErrTokenInvalid for everything else.
func (c *Codec) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret := c.accessSecret
	if kind == Refresh {
		secret = c.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
