package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/employee-management/internal/core/domain"
)

const testTTL = 30 * time.Minute

func newTestStore(t *testing.T) (*miniredis.Miniredis, *SessionStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewSessionStore(client)
}

func newSession(token, username string) *domain.Session {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Session{
		Token:     token,
		Username:  username,
		Role:      domain.RoleManager,
		CreatedAt: now,
		ExpiresAt: now.Add(testTTL),
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	replaced, err := store.Create(ctx, newSession("t1", "alice"), testTTL)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if replaced {
		t.Fatalf("first session must not report a replacement")
	}

	sess, err := store.Get(ctx, "t1", testTTL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess.Username != "alice" || sess.Role != domain.RoleManager || sess.Token != "t1" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !sess.CreatedAt.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at %v", sess.CreatedAt)
	}

	if got := mr.HGet("ems:session:t1", "username"); got != "alice" {
		t.Fatalf("unexpected stored username %q", got)
	}
	if got, _ := mr.Get("ems:session:user:alice"); got != "t1" {
		t.Fatalf("unexpected user pointer %q", got)
	}
}

func TestSessionStore_SecondLoginReplacesFirst(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, newSession("t1", "alice"), testTTL)
	replaced, err := store.Create(ctx, newSession("t2", "alice"), testTTL)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !replaced {
		t.Fatalf("expected replacement to be reported")
	}

	if _, err := store.Get(ctx, "t1", testTTL); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected first session gone, got %v", err)
	}
	if mr.Exists("ems:session:t1") {
		t.Fatalf("expected old session key deleted")
	}
	if _, err := store.Get(ctx, "t2", testTTL); err != nil {
		t.Fatalf("expected second session live, got %v", err)
	}
}

func TestSessionStore_ConcurrentLoginsLeaveOneSession(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	tokens := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			if _, err := store.Create(ctx, newSession(tok, "bob"), testTTL); err != nil {
				t.Errorf("create: %v", err)
			}
		}(tok)
	}
	wg.Wait()

	live := 0
	for _, tok := range tokens {
		if mr.Exists("ems:session:" + tok) {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("expected exactly one live session, got %d", live)
	}
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, newSession("t1", "carol"), testTTL)

	mr.FastForward(20 * time.Minute)
	if _, err := store.Get(ctx, "t1", testTTL); err != nil {
		t.Fatalf("expected live session, got %v", err)
	}

	// Get slid the TTL back to 30 minutes.
	mr.FastForward(20 * time.Minute)
	if _, err := store.Get(ctx, "t1", testTTL); err != nil {
		t.Fatalf("expected sliding expiry, got %v", err)
	}

	mr.FastForward(31 * time.Minute)
	if _, err := store.Get(ctx, "t1", testTTL); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, newSession("t1", "dave"), testTTL)

	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, "t1"); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if mr.Exists("ems:session:t1") || mr.Exists("ems:session:user:dave") {
		t.Fatalf("expected both keys removed")
	}
	if _, err := store.Get(ctx, "t1", testTTL); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_DeleteStaleTokenKeepsCurrentPointer(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, newSession("t1", "erin"), testTTL)
	_, _ = store.Create(ctx, newSession("t2", "erin"), testTTL)

	if err := store.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := mr.Get("ems:session:user:erin"); got != "t2" {
		t.Fatalf("pointer to current session was removed, got %q", got)
	}
}

func TestSessionStore_RedisDownIsStorageFailure(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	if _, err := store.Get(context.Background(), "t1", testTTL); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
