package pubsub

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChannelToTopicAndKey(t *testing.T) {
	t.Run("user events channel maps to notifications topic", func(t *testing.T) {
		topic, key, err := channelToTopicAndKey("notify:user:USER123:events")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if topic != TopicUserNotifications {
			t.Errorf("expected topic %q, got %q", TopicUserNotifications, topic)
		}
		if key != "USER123" {
			t.Errorf("expected key USER123, got %q", key)
		}
	})

	t.Run("helper output round-trips", func(t *testing.T) {
		channel := UserEventsChannel("u42")
		_, key, err := channelToTopicAndKey(channel)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", channel, err)
		}
		if key != "u42" {
			t.Errorf("expected key u42, got %q", key)
		}
	})

	t.Run("malformed channels rejected", func(t *testing.T) {
		for _, channel := range []string{"", "notify:user:u1", "chat:user:u1:events", "notify:room:u1:events"} {
			if _, _, err := channelToTopicAndKey(channel); err == nil {
				t.Errorf("expected error for %q", channel)
			}
		}
	})
}

func TestPatternToTopic(t *testing.T) {
	topic, err := patternToTopic("notify:user:*:events")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topic != TopicUserNotifications {
		t.Errorf("expected topic %q, got %q", TopicUserNotifications, topic)
	}

	if _, err := patternToTopic("other:*:pattern"); err == nil {
		t.Error("expected error for unknown pattern")
	}
}

func TestNewEventPayload(t *testing.T) {
	payload := NotificationPayload{
		UserID:    "u1",
		Title:     "New message from ash",
		Body:      "hello",
		Category:  CategoryMessage,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	event, err := NewEvent(EventNotification, "u1", payload)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if event.Type != EventNotification || event.UserID != "u1" {
		t.Fatalf("unexpected event envelope: %+v", event)
	}

	var decoded NotificationPayload
	if err := json.Unmarshal(event.Payload, &decoded); err != nil {
		t.Fatalf("payload does not decode: %v", err)
	}
	if decoded != payload {
		t.Fatalf("payload mismatch: got %+v, want %+v", decoded, payload)
	}
}
