package notifier

import (
	"context"
	"time"

	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
)

// Notifier fires a notification event at a target user. Delivery is
// best-effort and at-most-once: a failed emit is logged and discarded,
// never surfaced to the operation that triggered it.
type Notifier interface {
	Emit(ctx context.Context, userID, title, body, category string)
}

// PubSubNotifier emits notifications onto the platform event bus, where
// the notification store consumes them.
type PubSubNotifier struct {
	pub     pubsub.Publisher
	timeout time.Duration
}

// NewPubSubNotifier creates a notifier over the given publisher.
func NewPubSubNotifier(pub pubsub.Publisher, timeout time.Duration) *PubSubNotifier {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &PubSubNotifier{pub: pub, timeout: timeout}
}

// Emit publishes the notification asynchronously. The caller's request
// is never blocked on, or failed by, the event bus.
func (n *PubSubNotifier) Emit(ctx context.Context, userID, title, body, category string) {
	payload := pubsub.NotificationPayload{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Category:  category,
		CreatedAt: time.Now(),
	}

	event, err := pubsub.NewEvent(pubsub.EventNotification, userID, payload)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).
			Str(log.FieldUserID, userID).
			Str(log.FieldCategory, category).
			Msg("failed to build notification event")
		return
	}

	// Detach from the request context so an aborted request does not
	// cancel an already-decided emit.
	logger := log.Ctx(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.pub.Publish(pubCtx, pubsub.UserEventsChannel(userID), event); err != nil {
			logger.Warn().Err(err).
				Str(log.FieldUserID, userID).
				Str(log.FieldCategory, category).
				Msg("notification emit failed")
		}
	}()
}
