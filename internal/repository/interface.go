package repository

import (
	"context"
	"errors"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
)

// MessageRepository defines the interface for message persistence.
// The store assigns id, sequence number and creation time on append;
// transcript order is always (created_at, seq) ascending so concurrent
// writers cannot produce out-of-order threads.
type MessageRepository interface {
	// Append persists a new message and fills in ID, Seq and CreatedAt.
	Append(ctx context.Context, msg *domain.Message) error
	// GetByID retrieves a single message by its public identifier.
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// FindBetween returns every message exchanged between the unordered
	// pair {userA, userB} in transcript order.
	FindBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)
	// ListByUser returns every message the user sent or received, in
	// transcript order.
	ListByUser(ctx context.Context, userID string) ([]domain.Message, error)
	// MarkRead flags all unread messages from fromUserID to toUserID as
	// read and reports how many rows changed. Read state only ever moves
	// from false to true.
	MarkRead(ctx context.Context, toUserID, fromUserID string) (int64, error)
	// DeleteByID hard-deletes a message. Returns ErrMessageNotFound if
	// no row matched.
	DeleteByID(ctx context.Context, id string) error
}

// UserRepository resolves user identities. Reads only; the users table
// belongs to the user service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDs resolves a batch of user IDs. Unknown or deleted IDs are
	// simply absent from the result map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}
