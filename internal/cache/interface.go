package cache

import (
	"context"
	"time"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
)

// ConversationCacheResult is the cached form of a conversation listing.
type ConversationCacheResult struct {
	Conversations []domain.ConversationResponse `json:"conversations"`
}

// ConversationCache caches per-user conversation listings. The index is
// always recomputable from the message log, so every implementation is
// free to miss; callers must treat any cache error as a miss.
type ConversationCache interface {
	Get(ctx context.Context, key string) (*ConversationCacheResult, error)
	Set(ctx context.Context, key string, result *ConversationCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKey(userID string) string
	Close() error
}
