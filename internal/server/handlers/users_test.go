package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/storage"
	"github.com/iudanet/viewtube/pkg/api"
)

func TestUsersHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), user)
	rec := httptest.NewRecorder()
	env.usersH.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, user.ID, resp.ID)

	// Хэш пароля и refresh token наружу не утекают
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "refresh")
}

func TestUsersHandler_Me_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.usersH.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsersHandler_UpdateAccount(t *testing.T) {
	tests := []struct {
		name       string
		body       api.UpdateAccountRequest
		wantStatus int
	}{
		{
			name:       "valid update",
			body:       api.UpdateAccountRequest{FullName: "Alice Renamed", Email: "renamed@example.com"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "blank full name",
			body:       api.UpdateAccountRequest{FullName: "   ", Email: "renamed@example.com"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad email",
			body:       api.UpdateAccountRequest{FullName: "Alice Renamed", Email: "nope"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.seedUser(t, "alice", "password123")

			body, err := json.Marshal(tt.body)
			require.NoError(t, err)

			req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", bytes.NewReader(body)), user)
			rec := httptest.NewRecorder()
			env.usersH.UpdateAccount(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp api.PublicUser
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Alice Renamed", resp.FullName)
			assert.Equal(t, "renamed@example.com", resp.Email)
		})
	}
}

func TestUsersHandler_UpdateAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new.png"})
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/avatar", body), user)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.usersH.UpdateAvatar(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.AvatarURL, "https://blobs.test/avatars/")
	assert.NotEqual(t, user.AvatarURL, resp.AvatarURL)
}

func TestUsersHandler_UpdateAvatar_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	body, contentType := multipartBody(t, map[string]string{"unrelated": "x"}, nil)
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/avatar", body), user)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.usersH.UpdateAvatar(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "avatar file is required")
}

func TestUsersHandler_UpdateCoverImage(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	body, contentType := multipartBody(t, nil, map[string]string{"cover_image": "cover.jpg"})
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/cover", body), user)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	env.usersH.UpdateCoverImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.CoverImageURL, "https://blobs.test/covers/")
}

func TestUsersHandler_ChannelProfile(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.seedUser(t, "bob", "password123")

	env.profiles.profile = &models.ChannelProfile{
		PublicUser: models.PublicUser{
			ID:       "channel-1",
			Username: "alice",
			FullName: "Alice Example",
		},
		SubscriberCount:   42,
		SubscribedToCount: 7,
		IsSubscribed:      true,
	}

	t.Run("authenticated viewer", func(t *testing.T) {
		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil), viewer)
		req.SetPathValue("username", "alice")

		rec := httptest.NewRecorder()
		env.usersH.ChannelProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, viewer.ID, env.profiles.lastViewerID)

		var resp api.ChannelProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, int64(42), resp.SubscriberCount)
		assert.Equal(t, int64(7), resp.SubscribedToCount)
		assert.True(t, resp.IsSubscribed)
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/alice", nil)
		req.SetPathValue("username", "alice")

		rec := httptest.NewRecorder()
		env.usersH.ChannelProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, env.profiles.lastViewerID)
	})

	t.Run("unknown channel", func(t *testing.T) {
		env.profiles.profileErr = storage.ErrUserNotFound

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/ghost", nil)
		req.SetPathValue("username", "ghost")

		rec := httptest.NewRecorder()
		env.usersH.ChannelProfile(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env.profiles.profileErr = nil
	})

	t.Run("missing username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/channel/", nil)

		rec := httptest.NewRecorder()
		env.usersH.ChannelProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUsersHandler_WatchHistory(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	now := time.Now().UTC()
	env.profiles.history = []*models.WatchEntry{
		{
			Video: models.Video{
				ID:      "video-2",
				OwnerID: "channel-1",
				Title:   "Second video",
			},
			Owner:     &models.PublicUser{ID: "channel-1", Username: "creator"},
			WatchedAt: now,
		},
		{
			Video: models.Video{
				ID:      "video-1",
				OwnerID: "channel-1",
				Title:   "First video",
			},
			Owner:     &models.PublicUser{ID: "channel-1", Username: "creator"},
			WatchedAt: now.Add(-time.Hour),
		},
	}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil), user)
	rec := httptest.NewRecorder()
	env.usersH.WatchHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []api.WatchHistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "video-2", resp[0].Video.ID)
	assert.Equal(t, "creator", resp[0].Owner.Username)
	assert.Equal(t, "video-1", resp[1].Video.ID)
}

func TestUsersHandler_WatchHistory_Empty(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/history", nil), user)
	rec := httptest.NewRecorder()
	env.usersH.WatchHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Пустая история — пустой массив, не null
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUsersHandler_ToggleSubscription(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", "password123")

	toggle := func(channelID string) *httptest.ResponseRecorder {
		req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/"+channelID, nil), user)
		req.SetPathValue("channelID", channelID)
		rec := httptest.NewRecorder()
		env.usersH.ToggleSubscription(rec, req)
		return rec
	}

	t.Run("subscribe then unsubscribe", func(t *testing.T) {
		rec := toggle("channel-1")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.SubscriptionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Subscribed)
		assert.Equal(t, "channel-1", resp.ChannelID)

		rec = toggle("channel-1")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Subscribed)
	})

	t.Run("self subscription rejected", func(t *testing.T) {
		rec := toggle(user.ID)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "yourself")
	})

	t.Run("unknown channel", func(t *testing.T) {
		env.profiles.toggleErr = storage.ErrUserNotFound
		rec := toggle("ghost")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		env.profiles.toggleErr = nil
	})
}
