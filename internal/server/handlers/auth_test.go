package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/viewtube/pkg/api"
)

func registerRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestAuthHandler_Register(t *testing.T) {
	validFields := map[string]string{
		"full_name": "Alice Example",
		"email":     "alice@example.com",
		"username":  "alice",
		"password":  "password123",
	}

	tests := []struct {
		name       string
		fields     map[string]string
		files      map[string]string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid registration",
			fields:     validFields,
			files:      map[string]string{"avatar": "a.png", "cover_image": "c.png"},
			wantStatus: http.StatusCreated,
			wantBody:   `"username":"alice"`,
		},
		{
			name:       "avatar only",
			fields:     validFields,
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusCreated,
			wantBody:   "registered successfully",
		},
		{
			name:       "missing avatar",
			fields:     validFields,
			files:      map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "avatar file is required",
		},
		{
			name: "bad email",
			fields: map[string]string{
				"full_name": "Alice Example",
				"email":     "not-an-email",
				"username":  "alice",
				"password":  "password123",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "email",
		},
		{
			name: "short password",
			fields: map[string]string{
				"full_name": "Alice Example",
				"email":     "alice@example.com",
				"username":  "alice",
				"password":  "short",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := httptest.NewRecorder()
			env.authH.Register(rec, registerRequest(t, tt.fields, tt.files))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "password123")

	req := registerRequest(t, map[string]string{
		"full_name": "Other Alice",
		"email":     "other@example.com",
		"username":  "alice",
		"password":  "password123",
	}, map[string]string{"avatar": "a.png"})

	rec := httptest.NewRecorder()
	env.authH.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Register_UploadHitsBlobStore(t *testing.T) {
	env := newTestEnv(t)

	req := registerRequest(t, map[string]string{
		"full_name": "Alice Example",
		"email":     "alice@example.com",
		"username":  "alice",
		"password":  "password123",
	}, map[string]string{"avatar": "a.png", "cover_image": "c.png"})

	rec := httptest.NewRecorder()
	env.authH.Register(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Оба файла легли в blob storage под своими префиксами
	var avatars, covers int
	for key := range env.blobs.uploads {
		switch {
		case strings.HasPrefix(key, "avatars/"):
			avatars++
		case strings.HasPrefix(key, "covers/"):
			covers++
		}
	}
	assert.Equal(t, 1, avatars)
	assert.Equal(t, 1, covers)

	var resp api.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.User.AvatarURL, "https://blobs.test/avatars/"))
	assert.True(t, strings.HasPrefix(resp.User.CoverImageURL, "https://blobs.test/covers/"))
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "password123")

	tests := []struct {
		name       string
		login      string
		password   string
		wantStatus int
	}{
		{"by username", "alice", "password123", http.StatusOK},
		{"by email", "alice@example.com", "password123", http.StatusOK},
		{"wrong password", "alice", "wrongpass123", http.StatusUnauthorized},
		{"unknown user", "bob", "password123", http.StatusNotFound},
		{"blank login", "", "password123", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(api.LoginRequest{Login: tt.login, Password: tt.password})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			env.authH.Login(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp api.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "alice", resp.User.Username)
			assert.NotEmpty(t, resp.AccessToken)
			assert.NotEmpty(t, resp.RefreshToken)

			// Токены дублируются в httpOnly cookies
			access := findCookie(t, rec, AccessTokenCookie)
			require.NotNil(t, access)
			assert.Equal(t, resp.AccessToken, access.Value)
			assert.True(t, access.HttpOnly)
			assert.True(t, access.Secure)

			refresh := findCookie(t, rec, RefreshTokenCookie)
			require.NotNil(t, refresh)
			assert.Equal(t, resp.RefreshToken, refresh.Value)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	login := func() *api.LoginResponse {
		body, _ := json.Marshal(api.LoginRequest{Login: "alice", Password: "password123"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		env.authH.Login(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return &resp
	}

	t.Run("refresh via cookie", func(t *testing.T) {
		session := login()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: session.RefreshToken})
		rec := httptest.NewRecorder()
		env.authH.Refresh(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEqual(t, session.RefreshToken, resp.RefreshToken)

		// Хранилище теперь знает только новый токен
		stored, err := env.users.GetUserByID(req.Context(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, resp.RefreshToken, stored.RefreshToken)
	})

	t.Run("refresh via body", func(t *testing.T) {
		session := login()

		body, _ := json.Marshal(api.RefreshRequest{RefreshToken: session.RefreshToken})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		env.authH.Refresh(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("replayed token rejected", func(t *testing.T) {
		session := login()

		// Первая ротация съедает токен
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: session.RefreshToken})
		rec := httptest.NewRecorder()
		env.authH.Refresh(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		// Повтор того же токена — 401
		req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: session.RefreshToken})
		rec = httptest.NewRecorder()
		env.authH.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired or used")
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		rec := httptest.NewRecorder()
		env.authH.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	body, _ := json.Marshal(api.LoginRequest{Login: "alice", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	env.authH.Login(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil), user)
	rec = httptest.NewRecorder()
	env.authH.Logout(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Cookies сброшены
	access := findCookie(t, rec, AccessTokenCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Negative(t, access.MaxAge)

	// Refresh token стерт из хранилища
	stored, err := env.users.GetUserByID(req.Context(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)
}

func TestAuthHandler_Logout_NoContext(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	env.authH.Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	changeReq := func(old, newPass string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(api.ChangePasswordRequest{OldPassword: old, NewPassword: newPass})
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password", bytes.NewReader(body)), user)
		rec := httptest.NewRecorder()
		env.authH.ChangePassword(rec, req)
		return rec
	}

	t.Run("wrong old password", func(t *testing.T) {
		rec := changeReq("wrongpass123", "newpassword1")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("short new password", func(t *testing.T) {
		rec := changeReq("password123", "short")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec := changeReq("password123", "newpassword1")
		require.Equal(t, http.StatusOK, rec.Code)

		// Старый пароль больше не работает
		body, _ := json.Marshal(api.LoginRequest{Login: "alice", Password: "password123"})
		loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		loginRec := httptest.NewRecorder()
		env.authH.Login(loginRec, loginReq)
		assert.Equal(t, http.StatusUnauthorized, loginRec.Code)

		// Новый работает
		body, _ = json.Marshal(api.LoginRequest{Login: "alice", Password: "newpassword1"})
		loginReq = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		loginRec = httptest.NewRecorder()
		env.authH.Login(loginRec, loginReq)
		assert.Equal(t, http.StatusOK, loginRec.Code)
	})
}
