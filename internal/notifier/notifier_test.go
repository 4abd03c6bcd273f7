package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
)

type capturedPublish struct {
	channel string
	event   *pubsub.Event
}

type fakePublisher struct {
	err      error
	received chan capturedPublish
}

func newFakePublisher(err error) *fakePublisher {
	return &fakePublisher{err: err, received: make(chan capturedPublish, 1)}
}

func (p *fakePublisher) Publish(_ context.Context, channel string, event *pubsub.Event) error {
	p.received <- capturedPublish{channel: channel, event: event}
	return p.err
}

func waitForPublish(t *testing.T, p *fakePublisher) capturedPublish {
	t.Helper()
	select {
	case got := <-p.received:
		return got
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
		return capturedPublish{}
	}
}

func TestPubSubNotifierEmit(t *testing.T) {
	pub := newFakePublisher(nil)
	n := NewPubSubNotifier(pub, time.Second)

	n.Emit(context.Background(), "bob", "New message from ash", "hello", pubsub.CategoryMessage)

	got := waitForPublish(t, pub)
	if got.channel != pubsub.UserEventsChannel("bob") {
		t.Fatalf("published on %q, want per-user channel", got.channel)
	}
	if got.event.Type != pubsub.EventNotification {
		t.Fatalf("expected %q event, got %q", pubsub.EventNotification, got.event.Type)
	}

	var payload pubsub.NotificationPayload
	if err := got.event.UnmarshalPayload(&payload); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if payload.UserID != "bob" || payload.Category != pubsub.CategoryMessage || payload.Body != "hello" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPubSubNotifierSwallowsPublishErrors(t *testing.T) {
	pub := newFakePublisher(errors.New("broker down"))
	n := NewPubSubNotifier(pub, time.Second)

	// Emit must neither block nor panic when the bus is unavailable.
	n.Emit(context.Background(), "bob", "title", "body", pubsub.CategoryPlay)
	waitForPublish(t, pub)
}

// fakeBusSubscriber mimics the bus backends: unsubscribing closes the
// event channel, which ends the consumer loop.
type fakeBusSubscriber struct {
	mu        sync.Mutex
	events    chan *pubsub.Event
	patterns  []string
	closeOnce sync.Once
}

func newFakeBusSubscriber() *fakeBusSubscriber {
	return &fakeBusSubscriber{events: make(chan *pubsub.Event, 8)}
}

func (s *fakeBusSubscriber) Subscribe(ctx context.Context, channel string) (<-chan *pubsub.Event, error) {
	return s.SubscribePattern(ctx, channel)
}

func (s *fakeBusSubscriber) SubscribePattern(_ context.Context, pattern string) (<-chan *pubsub.Event, error) {
	s.mu.Lock()
	s.patterns = append(s.patterns, pattern)
	s.mu.Unlock()
	return s.events, nil
}

func (s *fakeBusSubscriber) Unsubscribe(_ context.Context, _ string) error {
	s.closeOnce.Do(func() { close(s.events) })
	return nil
}

func TestTapConsumesUserNotifications(t *testing.T) {
	bus := newFakeBusSubscriber()
	tap := NewTap(bus)

	if err := tap.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(bus.patterns) != 1 || bus.patterns[0] != pubsub.PatternUserEvents {
		t.Fatalf("tap must watch all user channels, got %v", bus.patterns)
	}

	event, err := pubsub.NewEvent(pubsub.EventNotification, "bob", pubsub.NotificationPayload{
		UserID:   "bob",
		Title:    "New message from ash",
		Category: pubsub.CategoryMessage,
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	bus.events <- event

	// Stop unsubscribes and must return once the loop has drained.
	done := make(chan struct{})
	go func() {
		tap.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestPubSubNotifierCanceledRequestStillEmits(t *testing.T) {
	pub := newFakePublisher(nil)
	n := NewPubSubNotifier(pub, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n.Emit(ctx, "bob", "title", "body", pubsub.CategoryShop)
	got := waitForPublish(t, pub)
	if got.channel != pubsub.UserEventsChannel("bob") {
		t.Fatalf("published on %q", got.channel)
	}
}
