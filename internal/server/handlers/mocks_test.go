package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/auth"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/internal/token"
)

const bcryptTestCost = bcrypt.MinCost

// mockUserStorage — in-memory реализация storage.UserStorage
type mockUserStorage struct {
	users map[string]*models.User
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return storage.ErrUserAlreadyExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserStorage) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == strings.ToLower(login) || u.Email == login {
			clone := *u
			return &clone, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockUserStorage) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.RefreshToken = refreshToken
	return nil
}

func (m *mockUserStorage) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	if u.RefreshToken != oldToken {
		return storage.ErrTokenMismatch
	}
	u.RefreshToken = newToken
	return nil
}

func (m *mockUserStorage) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockUserStorage) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.FullName = fullName
	u.Email = email
	return nil
}

func (m *mockUserStorage) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

func (m *mockUserStorage) UpdateCoverImage(ctx context.Context, userID, coverURL string) error {
	u, ok := m.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.CoverImageURL = coverURL
	return nil
}

// mockProfileStorage — подменяемая реализация storage.ProfileStorage
type mockProfileStorage struct {
	profile      *models.ChannelProfile
	profileErr   error
	history      []*models.WatchEntry
	historyErr   error
	subscribed   bool
	toggleErr    error
	lastViewerID string
}

func (m *mockProfileStorage) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	m.lastViewerID = viewerID
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *mockProfileStorage) GetWatchHistory(ctx context.Context, userID string, limit int) ([]*models.WatchEntry, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockProfileStorage) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if m.toggleErr != nil {
		return false, m.toggleErr
	}
	m.subscribed = !m.subscribed
	return m.subscribed, nil
}

func (m *mockProfileStorage) CreateVideo(ctx context.Context, video *models.Video) error {
	return nil
}

func (m *mockProfileStorage) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	return nil
}

// mockBlobStore пишет загрузки в память и отдает детерминированные URL
type mockBlobStore struct {
	uploads map[string][]byte
	err     error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{uploads: make(map[string][]byte)}
}

func (m *mockBlobStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.uploads[key] = data
	return "https://blobs.test/" + key, nil
}

// testEnv собирает handler'ы с реальным auth.Service поверх моков
type testEnv struct {
	users    *mockUserStorage
	profiles *mockProfileStorage
	blobs    *mockBlobStore
	codec    *token.Codec
	sessions *auth.Service
	authH    *AuthHandler
	usersH   *UsersHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	users := newMockUserStorage()
	profiles := &mockProfileStorage{}
	blobs := newMockBlobStore()
	codec := token.NewCodec("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	sessions := auth.NewService(logger, users, codec, auth.NewBcryptHasher(bcryptTestCost))

	return &testEnv{
		users:    users,
		profiles: profiles,
		blobs:    blobs,
		codec:    codec,
		sessions: sessions,
		authH:    NewAuthHandler(logger, sessions, blobs, codec.AccessTTL(), codec.RefreshTTL()),
		usersH:   NewUsersHandler(logger, users, profiles, blobs),
	}
}

// seedUser регистрирует пользователя и возвращает его запись
func (e *testEnv) seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()

	public, err := e.sessions.Register(context.Background(), auth.RegisterInput{
		FullName:  "Test " + username,
		Email:     username + "@example.com",
		Username:  username,
		Password:  password,
		AvatarURL: "https://blobs.test/avatars/" + username + ".png",
	})
	require.NoError(t, err)

	user, err := e.users.GetUserByID(context.Background(), public.ID)
	require.NoError(t, err)
	return user
}

// withUser кладет пользователя в контекст запроса, как это делает auth middleware
func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), UserKey, user.Public())
	return r.WithContext(ctx)
}

// multipartBody собирает multipart форму с полями и файлами
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for field, filename := range files {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader(fmt.Sprintf("fake image bytes for %s", filename)))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// findCookie ищет cookie в ответе по имени
func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
