package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/audit"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/cache"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/notifier"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/repository"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
)

var (
	ErrEmptyUserID    = errors.New("user id must not be empty")
	ErrEmptyMessageID = errors.New("message id must not be empty")
	ErrSelfMessage    = errors.New("cannot send a message to yourself")
	ErrEmptyContent   = errors.New("message content must not be empty")
)

// notifyBodyLimit bounds how much message content is echoed into a
// notification body.
const notifyBodyLimit = 120

type messageServiceImpl struct {
	messages  repository.MessageRepository
	users     repository.UserRepository
	convCache cache.ConversationCache
	cacheTTL  time.Duration
	notify    notifier.Notifier
	sf        singleflight.Group
}

// NewMessageService creates the messaging service.
func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	convCache cache.ConversationCache,
	cacheTTL time.Duration,
	notify notifier.Notifier,
) MessageService {
	return &messageServiceImpl{
		messages:  messages,
		users:     users,
		convCache: convCache,
		cacheTTL:  cacheTTL,
		notify:    notify,
	}
}

// SendMessage validates, appends and fans out a new message. Content is
// stored verbatim; the store assigns identity and ordering.
func (s *messageServiceImpl) SendMessage(ctx context.Context, fromUserID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	l := log.Ctx(ctx)

	if fromUserID == "" || req.ToUserID == "" {
		return nil, ErrEmptyUserID
	}
	if fromUserID == req.ToUserID {
		return nil, ErrSelfMessage
	}
	if req.Content == "" {
		return nil, ErrEmptyContent
	}

	// Recipient must exist; deleted accounts cannot receive messages.
	if _, err := s.users.GetByID(ctx, req.ToUserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		l.Error().Err(err).Str(log.FieldPeerID, req.ToUserID).Msg("failed to resolve recipient")
		return nil, err
	}

	msg := &domain.Message{
		FromUserID: fromUserID,
		ToUserID:   req.ToUserID,
		Content:    req.Content,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		l.Error().Err(err).Msg("failed to append message")
		return nil, err
	}

	s.invalidateConversations(ctx, fromUserID, req.ToUserID)

	// Post-condition of the append: the recipient gets a notification.
	// Emission is best-effort and never rolls the append back.
	s.notify.Emit(ctx, req.ToUserID,
		fmt.Sprintf("New message from %s", s.displayName(ctx, fromUserID)),
		truncate(msg.Content, notifyBodyLimit),
		pubsub.CategoryMessage)

	audit.LogWithTarget(ctx, audit.ActionSendMessage, fromUserID, req.ToUserID, "message sent")

	resp := msg.ToResponse()
	return &resp, nil
}

// ListConversations derives the conversation index for a user: one entry
// per distinct peer, annotated with the latest message and unread count.
func (s *messageServiceImpl) ListConversations(ctx context.Context, userID string) ([]domain.ConversationResponse, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	cacheKey := s.convCache.BuildKey(userID)

	// Collapse concurrent listings for the same user onto one compute.
	result, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		return s.fetchConversations(ctx, userID, cacheKey)
	})
	if err != nil {
		return nil, err
	}

	cached, ok := result.(*cache.ConversationCacheResult)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return cached.Conversations, nil
}

func (s *messageServiceImpl) fetchConversations(ctx context.Context, userID, cacheKey string) (*cache.ConversationCacheResult, error) {
	l := log.Ctx(ctx)

	cached, err := s.convCache.Get(ctx, cacheKey)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Degrade to a fresh compute; the cache is never load-bearing.
		l.Warn().Err(err).Msg("conversation cache get error")
	}

	conversations, err := s.buildConversationIndex(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &cache.ConversationCacheResult{Conversations: conversations}

	// Store asynchronously so a slow cache never delays the response.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.convCache.Set(cacheCtx, cacheKey, result, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("conversation cache set error")
		}
	}()

	return result, nil
}

// conversationAccumulator collects per-peer state during the partition pass.
type conversationAccumulator struct {
	peerID      string
	lastMessage domain.Message
	unreadCount int
}

// buildConversationIndex partitions the user's messages by peer, reduces
// each partition to its latest message and unread count, resolves peer
// identities and orders the result by recency.
func (s *messageServiceImpl) buildConversationIndex(ctx context.Context, userID string) ([]domain.ConversationResponse, error) {
	msgs, err := s.messages.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	byPeer := make(map[string]*conversationAccumulator)
	order := make([]string, 0)

	// Messages arrive in transcript order, so the last one seen per
	// partition is that conversation's latest.
	for i := range msgs {
		msg := msgs[i]
		peerID := msg.ToUserID
		if msg.ToUserID == userID {
			peerID = msg.FromUserID
		}

		acc, ok := byPeer[peerID]
		if !ok {
			acc = &conversationAccumulator{peerID: peerID}
			byPeer[peerID] = acc
			order = append(order, peerID)
		}

		acc.lastMessage = msg
		if msg.ToUserID == userID && !msg.Read {
			acc.unreadCount++
		}
	}

	peers, err := s.users.GetByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve peers: %w", err)
	}

	conversations := make([]domain.ConversationResponse, 0, len(byPeer))
	for _, peerID := range order {
		peer, ok := peers[peerID]
		if !ok {
			// Message history may outlive a deleted account; such
			// conversations are silently excluded.
			continue
		}
		acc := byPeer[peerID]
		conversations = append(conversations, domain.ConversationResponse{
			Peer:        peer.ToResponse(),
			LastMessage: acc.lastMessage.ToResponse(),
			UnreadCount: acc.unreadCount,
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		a, b := conversations[i], conversations[j]
		if !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt) {
			return a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt)
		}
		return a.Peer.ID < b.Peer.ID
	})

	return conversations, nil
}

// GetThread returns the transcript between two users with each message
// annotated with its sender's username.
func (s *messageServiceImpl) GetThread(ctx context.Context, userID, peerID string) ([]domain.ThreadMessage, error) {
	if userID == "" || peerID == "" {
		return nil, ErrEmptyUserID
	}

	msgs, err := s.messages.FindBetween(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}

	senders, err := s.users.GetByIDs(ctx, []string{userID, peerID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}

	thread := make([]domain.ThreadMessage, 0, len(msgs))
	for i := range msgs {
		tm := domain.ThreadMessage{MessageResponse: msgs[i].ToResponse()}
		if sender, ok := senders[msgs[i].FromUserID]; ok {
			tm.SenderUsername = sender.Username
		}
		thread = append(thread, tm)
	}
	return thread, nil
}

// MarkThreadRead flags all unread messages from peer to user as read.
// The transition is one-way; already-read messages are untouched.
func (s *messageServiceImpl) MarkThreadRead(ctx context.Context, userID, peerID string) (*domain.MarkReadResponse, error) {
	if userID == "" || peerID == "" {
		return nil, ErrEmptyUserID
	}

	updated, err := s.messages.MarkRead(ctx, userID, peerID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldPeerID, peerID).Msg("failed to mark thread read")
		return nil, err
	}

	if updated > 0 {
		// The peer's cached entry carries the read flag too, so both
		// sides are invalidated.
		s.invalidateConversations(ctx, userID, peerID)
		audit.LogWithTarget(ctx, audit.ActionMarkRead, userID, peerID, "thread marked read")
	}

	return &domain.MarkReadResponse{Updated: updated}, nil
}

// DeleteMessage hard-deletes a message. Only a participant may delete;
// anyone else sees not-found rather than confirmation the id exists.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, userID, messageID string) error {
	if messageID == "" {
		return ErrEmptyMessageID
	}

	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.FromUserID != userID && msg.ToUserID != userID {
		return repository.ErrMessageNotFound
	}

	if err := s.messages.DeleteByID(ctx, messageID); err != nil {
		return err
	}

	s.invalidateConversations(ctx, msg.FromUserID, msg.ToUserID)
	audit.LogWithTarget(ctx, audit.ActionDeleteMessage, userID, messageID, "message deleted")
	return nil
}

// SendPlayRequest validates the target and fans out a play notification.
// The play-requests store persists the request itself.
func (s *messageServiceImpl) SendPlayRequest(ctx context.Context, fromUserID string, req *domain.PlayRequestInput) (*domain.RequestAccepted, error) {
	if err := s.validateRequestTarget(ctx, fromUserID, req.ToUserID); err != nil {
		return nil, err
	}

	s.notify.Emit(ctx, req.ToUserID,
		fmt.Sprintf("Play request from %s", s.displayName(ctx, fromUserID)),
		fmt.Sprintf("You have been invited to play %s", req.Game),
		pubsub.CategoryPlay)

	audit.LogWithTarget(ctx, audit.ActionPlayRequest, fromUserID, req.ToUserID, "play request sent")
	return &domain.RequestAccepted{ToUserID: req.ToUserID, Category: pubsub.CategoryPlay}, nil
}

// SendShopRequest validates the target and fans out a shop notification.
func (s *messageServiceImpl) SendShopRequest(ctx context.Context, fromUserID string, req *domain.ShopRequestInput) (*domain.RequestAccepted, error) {
	if err := s.validateRequestTarget(ctx, fromUserID, req.ToUserID); err != nil {
		return nil, err
	}

	s.notify.Emit(ctx, req.ToUserID,
		fmt.Sprintf("Shop request from %s", s.displayName(ctx, fromUserID)),
		fmt.Sprintf("There is a new request about %s", req.Item),
		pubsub.CategoryShop)

	audit.LogWithTarget(ctx, audit.ActionShopRequest, fromUserID, req.ToUserID, "shop request sent")
	return &domain.RequestAccepted{ToUserID: req.ToUserID, Category: pubsub.CategoryShop}, nil
}

func (s *messageServiceImpl) validateRequestTarget(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == "" || toUserID == "" {
		return ErrEmptyUserID
	}
	if fromUserID == toUserID {
		return ErrSelfMessage
	}
	if _, err := s.users.GetByID(ctx, toUserID); err != nil {
		return err
	}
	return nil
}

// invalidateConversations drops the cached conversation index for the
// given users. Best-effort: a failed invalidation just means a stale
// read until the TTL expires.
func (s *messageServiceImpl) invalidateConversations(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, s.convCache.BuildKey(id))
	}
	if err := s.convCache.Delete(ctx, keys...); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("conversation cache invalidation failed")
	}
}

// displayName resolves a user's visible name for notification titles,
// preferring the display name over the username.
func (s *messageServiceImpl) displayName(ctx context.Context, userID string) string {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "a player"
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
