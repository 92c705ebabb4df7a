package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/viewtube/internal/models"
	"github.com/iudanet/viewtube/internal/server/storage"
)

// GetChannelProfile returns the channel's public profile with
// subscription counters aggregated in one query.
func (s *Storage) GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	query := `
		SELECT
			u.id, u.username, u.email, u.full_name, u.avatar_url,
			u.cover_image_url, u.created_at,
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = u.id) AS subscriber_count,
			(SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = u.id) AS subscribed_to_count,
			EXISTS (
				SELECT 1 FROM subscriptions
				WHERE channel_id = u.id AND subscriber_id = ?
			) AS is_subscribed
		FROM users u
		WHERE u.username = ?
	`

	profile := &models.ChannelProfile{}

	err := s.db.QueryRowContext(ctx, query, viewerID, strings.ToLower(username)).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.FullName,
		&profile.AvatarURL,
		&profile.CoverImageURL,
		&profile.CreatedAt,
		&profile.SubscriberCount,
		&profile.SubscribedToCount,
		&profile.IsSubscribed,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return profile, nil
}

// GetWatchHistory returns watched videos with their owners, newest first
func (s *Storage) GetWatchHistory(ctx context.Context, userID string, limit int) ([]*models.WatchEntry, error) {
	query := `
		SELECT
			v.id, v.owner_id, v.title, v.thumbnail_url, v.duration,
			v.views, v.created_at,
			o.id, o.username, o.email, o.full_name, o.avatar_url,
			o.cover_image_url, o.created_at,
			wh.watched_at
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE wh.user_id = ?
		ORDER BY wh.watched_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*models.WatchEntry

	for rows.Next() {
		entry := &models.WatchEntry{Owner: &models.PublicUser{}}
		if err := rows.Scan(
			&entry.Video.ID,
			&entry.Video.OwnerID,
			&entry.Video.Title,
			&entry.Video.ThumbnailURL,
			&entry.Video.Duration,
			&entry.Video.Views,
			&entry.Video.CreatedAt,
			&entry.Owner.ID,
			&entry.Owner.Username,
			&entry.Owner.Email,
			&entry.Owner.FullName,
			&entry.Owner.AvatarURL,
			&entry.Owner.CoverImageURL,
			&entry.Owner.CreatedAt,
			&entry.WatchedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// ToggleSubscription subscribes or unsubscribes and reports the new state
func (s *Storage) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	// Сначала пробуем отписаться; если строки не было — подписываемся
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`,
		subscriberID, channelID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id, created_at) VALUES (?, ?, ?)`,
		subscriberID, channelID, time.Now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return false, storage.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to insert subscription: %w", err)
	}

	return true, nil
}

// CreateVideo inserts a video row
func (s *Storage) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, owner_id, title, thumbnail_url, duration, views, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.ThumbnailURL,
		video.Duration,
		video.Views,
		video.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}

	return nil
}

// AddWatchHistory records a watch, refreshing watched_at on rewatch
func (s *Storage) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	query := `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = excluded.watched_at
	`

	_, err := s.db.ExecContext(ctx, query, userID, videoID, time.Now())
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return storage.ErrVideoNotFound
		}
		return fmt.Errorf("failed to add watch history: %w", err)
	}

	return nil
}
