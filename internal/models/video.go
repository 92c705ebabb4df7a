package models

import "time"

// Video представляет видео канала
// Храним только то, что нужно read-model запросам (история просмотров).
type Video struct {
	ID           string    `json:"id"`        // UUID видео
	OwnerID      string    `json:"owner_id"`  // ID пользователя-владельца
	Title        string    `json:"title"`     // заголовок
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     int64     `json:"duration"` // длительность в секундах
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
}

// WatchEntry is a single watch-history item: the video joined with the
// public projection of its owner.
type WatchEntry struct {
	Video     Video       `json:"video"`
	Owner     *PublicUser `json:"owner"`
	WatchedAt time.Time   `json:"watched_at"`
}

// ChannelProfile is the aggregated channel view: the channel owner's
// public profile plus subscription counters relative to the viewer.
type ChannelProfile struct {
	PublicUser
	SubscriberCount   int64 `json:"subscriber_count"`    // кто подписан на канал
	SubscribedToCount int64 `json:"subscribed_to_count"` // на кого подписан сам канал
	IsSubscribed      bool  `json:"is_subscribed"`       // подписан ли текущий зритель
}
