package api

import "time"

// UpdateAccountRequest представляет запрос на обновление профиля
type UpdateAccountRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// ChannelProfileResponse — агрегированный профиль канала
type ChannelProfileResponse struct {
	PublicUser
	SubscriberCount   int64 `json:"subscriber_count"`
	SubscribedToCount int64 `json:"subscribed_to_count"`
	IsSubscribed      bool  `json:"is_subscribed"`
}

// WatchHistoryEntry — элемент истории просмотров
type WatchHistoryEntry struct {
	Video     Video      `json:"video"`
	Owner     PublicUser `json:"owner"`
	WatchedAt time.Time  `json:"watched_at"`
}

// Video — наружное представление видео
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     int64     `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubscriptionResponse — результат переключения подписки
type SubscriptionResponse struct {
	ChannelID  string `json:"channel_id"`
	Subscribed bool   `json:"subscribed"`
}
