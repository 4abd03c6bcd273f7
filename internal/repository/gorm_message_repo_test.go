package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.MessageModel{}, &domain.UserModel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func appendMessage(t *testing.T, repo *GormMessageRepository, from, to, content string) *domain.Message {
	t.Helper()
	msg := &domain.Message{FromUserID: from, ToUserID: to, Content: content}
	if err := repo.Append(context.Background(), msg); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return msg
}

func TestGormMessageRepositoryAppend(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	msg := appendMessage(t, repo, "alice", "bob", "hello")

	if msg.ID == "" {
		t.Fatal("expected assigned message id")
	}
	if msg.Seq == 0 {
		t.Fatal("expected database-assigned sequence number")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("expected database-assigned timestamp")
	}
	if msg.Read {
		t.Fatal("new messages must start unread")
	}

	got, err := repo.GetByID(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Content != "hello" || got.FromUserID != "alice" || got.ToUserID != "bob" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	second := appendMessage(t, repo, "alice", "bob", "again")
	if second.Seq <= msg.Seq {
		t.Fatalf("sequence must be monotonic: %d then %d", msg.Seq, second.Seq)
	}
}

func TestGormMessageRepositoryFindBetween(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	m1 := appendMessage(t, repo, "alice", "bob", "one")
	m2 := appendMessage(t, repo, "bob", "alice", "two")
	appendMessage(t, repo, "alice", "carol", "unrelated")

	t.Run("both directions in insertion order", func(t *testing.T) {
		msgs, err := repo.FindBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("FindBetween failed: %v", err)
		}
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].ID != m1.ID || msgs[1].ID != m2.ID {
			t.Fatalf("unexpected order: [%s %s]", msgs[0].ID, msgs[1].ID)
		}
	})

	t.Run("symmetric in argument order", func(t *testing.T) {
		forward, err := repo.FindBetween(ctx, "alice", "bob")
		if err != nil {
			t.Fatalf("FindBetween failed: %v", err)
		}
		backward, err := repo.FindBetween(ctx, "bob", "alice")
		if err != nil {
			t.Fatalf("FindBetween failed: %v", err)
		}
		if len(forward) != len(backward) {
			t.Fatalf("asymmetric results: %d vs %d", len(forward), len(backward))
		}
		for i := range forward {
			if forward[i].ID != backward[i].ID {
				t.Fatalf("order differs at %d", i)
			}
		}
	})

	t.Run("empty for unknown pair", func(t *testing.T) {
		msgs, err := repo.FindBetween(ctx, "nobody", "noone")
		if err != nil {
			t.Fatalf("FindBetween failed: %v", err)
		}
		if len(msgs) != 0 {
			t.Fatalf("expected empty result, got %d", len(msgs))
		}
	})
}

func TestGormMessageRepositoryListByUser(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	appendMessage(t, repo, "alice", "bob", "a")
	appendMessage(t, repo, "carol", "alice", "b")
	appendMessage(t, repo, "bob", "carol", "not alice")

	msgs, err := repo.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages involving alice, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Seq < msgs[i-1].Seq {
			t.Fatalf("transcript out of order at %d", i)
		}
	}
}

func TestGormMessageRepositoryMarkRead(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	appendMessage(t, repo, "alice", "bob", "one")
	appendMessage(t, repo, "alice", "bob", "two")
	appendMessage(t, repo, "bob", "alice", "other direction")

	updated, err := repo.MarkRead(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 rows updated, got %d", updated)
	}

	// Only bob's incoming messages flip; alice's stay unread.
	msgs, err := repo.FindBetween(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("FindBetween failed: %v", err)
	}
	for _, m := range msgs {
		wantRead := m.ToUserID == "bob"
		if m.Read != wantRead {
			t.Fatalf("message %s read=%v, want %v", m.ID, m.Read, wantRead)
		}
	}

	updated, err = repo.MarkRead(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("second MarkRead failed: %v", err)
	}
	if updated != 0 {
		t.Fatalf("expected idempotent second pass, got %d updates", updated)
	}
}

func TestGormMessageRepositoryDeleteByID(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	t.Run("unknown id fails", func(t *testing.T) {
		err := repo.DeleteByID(ctx, "does-not-exist")
		if !errors.Is(err, ErrMessageNotFound) {
			t.Fatalf("expected ErrMessageNotFound, got %v", err)
		}
	})

	t.Run("deleted message is gone", func(t *testing.T) {
		msg := appendMessage(t, repo, "alice", "bob", "bye")
		if err := repo.DeleteByID(ctx, msg.ID); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		if _, err := repo.GetByID(ctx, msg.ID); !errors.Is(err, ErrMessageNotFound) {
			t.Fatalf("expected ErrMessageNotFound after delete, got %v", err)
		}
		if err := repo.DeleteByID(ctx, msg.ID); !errors.Is(err, ErrMessageNotFound) {
			t.Fatalf("expected second delete to fail, got %v", err)
		}
	})
}

func TestGormUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	seed := []domain.UserModel{
		{ID: "u1", Username: "ash", DisplayName: "Ash", Roles: database.StringArray{"player", "moderator"}},
		{ID: "u2", Username: "blaze"},
		{ID: "u3", Username: "gone"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	// Soft-delete u3 so lookups must skip it.
	if err := db.Delete(&domain.UserModel{}, "id = ?", "u3").Error; err != nil {
		t.Fatalf("failed to soft-delete user: %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		u, err := repo.GetByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if u.Username != "ash" || u.DisplayName != "Ash" {
			t.Fatalf("unexpected user: %+v", u)
		}
		if len(u.Roles) != 2 || u.Roles[1] != "moderator" {
			t.Fatalf("roles not resolved: %v", u.Roles)
		}
	})

	t.Run("unknown id fails", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "u999"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("deleted account is invisible", func(t *testing.T) {
		if _, err := repo.GetByID(ctx, "u3"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound for deleted user, got %v", err)
		}
	})

	t.Run("batch lookup skips missing and deleted", func(t *testing.T) {
		users, err := repo.GetByIDs(ctx, []string{"u1", "u2", "u3", "u404"})
		if err != nil {
			t.Fatalf("GetByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("expected 2 users, got %d", len(users))
		}
		if _, ok := users["u3"]; ok {
			t.Fatal("deleted user must not be returned")
		}
	})
}
