package storage

import (
	"context"

	"github.com/iudanet/viewtube/internal/models"
)

// ProfileStorage defines the social-graph read models and the minimal
// writes behind them. Read queries aggregate over the subscriptions,
// videos and watch_history tables.
type ProfileStorage interface {
	// GetChannelProfile returns the channel owner's public profile with
	// subscriber counters. viewerID may be empty (anonymous viewer);
	// then IsSubscribed is always false.
	// Returns ErrUserNotFound if no such channel
	GetChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)

	// GetWatchHistory returns the user's watched videos with their
	// owners' public projections, most recent first
	GetWatchHistory(ctx context.Context, userID string, limit int) ([]*models.WatchEntry, error)

	// ToggleSubscription subscribes the user to the channel, or removes
	// the subscription if it already exists. Returns the new state.
	// Returns ErrUserNotFound if the channel doesn't exist
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (subscribed bool, err error)

	// CreateVideo inserts a video row
	CreateVideo(ctx context.Context, video *models.Video) error

	// AddWatchHistory records that the user watched the video, moving it
	// to the top of the history if already present
	// Returns ErrVideoNotFound if the video doesn't exist
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}
