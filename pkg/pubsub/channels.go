package pubsub

import (
	"fmt"
	"time"
)

// Channel naming conventions for user-facing notifications.
const (
	// Per-user notification channel consumed by the notification store.
	ChannelUserEvents = "notify:user:%s:events"

	// PatternUserEvents matches every user's notification channel.
	PatternUserEvents = "notify:user:*:events"
)

// Event types published on user channels.
const (
	EventNotification = "notification"
)

// Notification categories recognised by the wider platform.
const (
	CategoryMessage = "message"
	CategoryPlay    = "play"
	CategoryShop    = "shop"
)

// UserEventsChannel returns the notification channel for a user.
func UserEventsChannel(userID string) string {
	return fmt.Sprintf(ChannelUserEvents, userID)
}

// NotificationPayload is the body of an EventNotification event.
type NotificationPayload struct {
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}
