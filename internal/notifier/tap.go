package notifier

import (
	"context"

	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
)

// Tap consumes every user notification on the event bus and logs it.
// It is an operator aid: with the tap enabled the service's own log
// shows what actually went out on the bus, which is the only way to
// see deliveries end to end without a bus client at hand.
type Tap struct {
	sub    pubsub.Subscriber
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTap creates a tap over the given subscriber. Call Start to begin
// consuming.
func NewTap(sub pubsub.Subscriber) *Tap {
	return &Tap{sub: sub}
}

// Start subscribes to all user notification channels and logs each
// event until Stop is called.
func (t *Tap) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	events, err := t.sub.SubscribePattern(ctx, pubsub.PatternUserEvents)
	if err != nil {
		cancel()
		return err
	}

	go t.consume(events)
	return nil
}

func (t *Tap) consume(events <-chan *pubsub.Event) {
	defer close(t.done)
	logger := log.L()

	for event := range events {
		var payload pubsub.NotificationPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			logger.Warn().Err(err).Str("event_type", event.Type).Msg("tap: undecodable notification")
			continue
		}
		logger.Info().
			Str(log.FieldUserID, payload.UserID).
			Str(log.FieldCategory, payload.Category).
			Str("title", payload.Title).
			Msg("notification delivered")
	}
}

// Stop unsubscribes and waits for the consume loop to drain.
func (t *Tap) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	if err := t.sub.Unsubscribe(context.Background(), pubsub.PatternUserEvents); err != nil {
		l := log.L()
		l.Warn().Err(err).Msg("tap: unsubscribe failed")
	}
	<-t.done
}
