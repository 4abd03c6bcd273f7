package domain

import (
	"time"
)

// Message is a single directed text message between two users.
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	Seq        int64     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// User is a read-only projection of the platform users table, resolved
// for peer display. This service never writes user rows.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Roles       []string `json:"roles"`
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// PlayRequestInput is the request body for a play request.
type PlayRequestInput struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Game     string `json:"game" binding:"required"`
}

// ShopRequestInput is the request body for a shop request.
type ShopRequestInput struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Item     string `json:"item" binding:"required"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ThreadMessage is a message in a thread response, annotated with the
// sender's display identity.
type ThreadMessage struct {
	MessageResponse
	SenderUsername string `json:"sender_username,omitempty"`
}

// UserResponse represents a peer in API responses. Roles are included
// so clients can render badges next to the peer's name.
type UserResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

// ConversationResponse is the derived per-peer summary used by the
// inbox listing: the peer, the latest message, and the unread count.
type ConversationResponse struct {
	Peer        UserResponse    `json:"peer"`
	LastMessage MessageResponse `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
}

// RequestAccepted is returned when a play or shop request has been
// handed to the notification fan-out.
type RequestAccepted struct {
	ToUserID string `json:"to_user_id"`
	Category string `json:"category"`
}

// MarkReadResponse reports how many messages were marked read.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// ToResponse converts a Message to its API representation.
func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}

// ToResponse converts a User to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Roles:       u.Roles,
	}
}
