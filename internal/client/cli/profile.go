package cli

import (
	"context"
	"fmt"
	"time"
)

// runHistory печатает историю просмотров
func (c *Cli) runHistory(ctx context.Context) error {
	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return err
	}

	entries, err := c.apiClient.WatchHistory(ctx, token)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		c.io.Println("Watch history is empty")
		return nil
	}

	for _, entry := range entries {
		c.io.Printf("%s  %-40s  by %s\n",
			entry.WatchedAt.Local().Format("2006-01-02 15:04"),
			entry.Video.Title,
			entry.Owner.Username,
		)
	}
	return nil
}

// runChannel показывает профиль канала.
// Работает и без логина: тогда is_subscribed не заполняется.
func (c *Cli) runChannel(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: viewtube channel <username>")
	}
	username := args[0]

	// Токен best effort: анонимный просмотр тоже валиден
	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		token = ""
	}

	profile, err := c.apiClient.ChannelProfile(ctx, token, username)
	if err != nil {
		return err
	}

	c.io.Printf("Channel:      %s (%s)\n", profile.Username, profile.FullName)
	c.io.Printf("Subscribers:  %d\n", profile.SubscriberCount)
	c.io.Printf("Subscribed to: %d channels\n", profile.SubscribedToCount)
	c.io.Printf("Joined:       %s\n", profile.CreatedAt.Format(time.DateOnly))
	if token != "" {
		if profile.IsSubscribed {
			c.io.Println("You are subscribed to this channel")
		} else {
			c.io.Println("You are not subscribed to this channel")
		}
	}
	return nil
}

// runSubscribe переключает подписку на канал
func (c *Cli) runSubscribe(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: viewtube subscribe <channel-id>")
	}

	token, err := c.sessions.AccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.ToggleSubscription(ctx, token, args[0])
	if err != nil {
		return err
	}

	if resp.Subscribed {
		c.io.Printf("Subscribed to channel %s\n", resp.ChannelID)
	} else {
		c.io.Printf("Unsubscribed from channel %s\n", resp.ChannelID)
	}
	return nil
}
