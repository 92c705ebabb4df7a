// Package api реализует HTTP клиент серверного API для CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/iudanet/viewtube/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// RegisterInput — поля регистрации плюс пути к файлам изображений
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register регистрирует нового пользователя.
// Аватар обязателен, обложка опциональна.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*api.RegisterResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"full_name": input.FullName,
		"email":     input.Email,
		"username":  input.Username,
		"password":  input.Password,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if err := attachFile(mw, "avatar", input.AvatarPath); err != nil {
		return nil, err
	}
	if input.CoverImagePath != "" {
		if err := attachFile(mw, "cover_image", input.CoverImagePath); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/register", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp api.RegisterResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя по username или email
func (c *Client) Login(ctx context.Context, login, password string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", "",
		api.LoginRequest{Login: login, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh меняет refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", "",
		api.RefreshRequest{RefreshToken: refreshToken}, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout инвалидирует refresh token на сервере
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, nil, nil)
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ChangePassword меняет пароль текущего пользователя
func (c *Client) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/change-password", accessToken,
		api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}, nil)
	if err != nil {
		return fmt.Errorf("change password request failed: %w", err)
	}
	return nil
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context, accessToken string) (*api.PublicUser, error) {
	var resp api.PublicUser
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/me", accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// ChannelProfile возвращает профиль канала по username.
// accessToken опционален: с ним сервер заполняет is_subscribed.
func (c *Client) ChannelProfile(ctx context.Context, accessToken, username string) (*api.ChannelProfileResponse, error) {
	var resp api.ChannelProfileResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/channel/"+username, accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("channel profile request failed: %w", err)
	}
	return &resp, nil
}

// WatchHistory возвращает историю просмотров текущего пользователя
func (c *Client) WatchHistory(ctx context.Context, accessToken string) ([]api.WatchHistoryEntry, error) {
	var resp []api.WatchHistoryEntry
	err := c.doJSON(ctx, http.MethodGet, "/api/v1/users/history", accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("watch history request failed: %w", err)
	}
	return resp, nil
}

// ToggleSubscription переключает подписку на канал
func (c *Client) ToggleSubscription(ctx context.Context, accessToken, channelID string) (*api.SubscriptionResponse, error) {
	var resp api.SubscriptionResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/subscriptions/"+channelID, accessToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("subscription request failed: %w", err)
	}
	return &resp, nil
}

// doJSON выполняет JSON запрос с опциональным bearer токеном
func (c *Client) doJSON(ctx context.Context, method, path, accessToken string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.do(req, result)
}

// do выполняет запрос и декодирует ответ
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// attachFile добавляет файл с диска в multipart форму
func attachFile(mw *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	fw, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("failed to copy file into form: %w", err)
	}

	return nil
}
