package service

import (
	"context"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
)

// MessageService is the business logic of the messaging subsystem: the
// append-only message log, the derived conversation index, the thread
// reader, and the notification fan-out for cross-user requests.
type MessageService interface {
	// SendMessage appends a message from the authenticated user and
	// fires a notification at the recipient.
	SendMessage(ctx context.Context, fromUserID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	// ListConversations returns the user's conversation index, one
	// entry per distinct peer, most recently active first.
	ListConversations(ctx context.Context, userID string) ([]domain.ConversationResponse, error)
	// GetThread returns the full transcript between the user and a peer
	// in chronological order. A pair with no history yields an empty
	// slice, not an error.
	GetThread(ctx context.Context, userID, peerID string) ([]domain.ThreadMessage, error)
	// MarkThreadRead marks every unread message from peer to user as read.
	MarkThreadRead(ctx context.Context, userID, peerID string) (*domain.MarkReadResponse, error)
	// DeleteMessage removes a message the user participates in.
	DeleteMessage(ctx context.Context, userID, messageID string) error
	// SendPlayRequest notifies a user of a play request.
	SendPlayRequest(ctx context.Context, fromUserID string, req *domain.PlayRequestInput) (*domain.RequestAccepted, error)
	// SendShopRequest notifies a user of a shop request.
	SendShopRequest(ctx context.Context, fromUserID string, req *domain.ShopRequestInput) (*domain.RequestAccepted, error)
}
