package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil), mr
}

func TestRedisStore_PutSetsTTLFromExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	st := State{ID: "s1", UserID: "u1", RoleID: RoleAdmin, ExpiresAt: now.Add(30 * time.Minute)}
	if err := store.Put(ctx, st); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "s1"); ttl != 30*time.Minute {
		t.Fatalf("expected ttl 30m, got %v", ttl)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.UserID != "u1" || got.RoleID != RoleAdmin || !got.ExpiresAt.Equal(st.ExpiresAt) {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Put(ctx, State{ID: "forever"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "forever"); ttl != 0 {
		t.Fatalf("session without expiry must not carry a ttl, got %v", ttl)
	}
}

func TestRedisStore_PutRejectsInvalid(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, State{ID: "  "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty id, got %v", err)
	}
	if err := store.Put(ctx, State{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for past expiry, got %v", err)
	}
	if mr.Exists(redisKeyPrefix + "old") {
		t.Fatalf("expired session must not be written")
	}
}

func TestRedisStore_GetMissingAndExpired(t *testing.T) {
	store, _ := newTestRedisStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, State{ID: "s1", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// key still present in redis, but the session itself is past its expiry
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, State{ID: "s1"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if mr.Exists(redisKeyPrefix + "s1") {
		t.Fatalf("expected key removed")
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, ""); err != nil {
		t.Fatalf("deleting an empty id must be a no-op, got %v", err)
	}
}

func TestOpen_UsesRedisWhenReachable(t *testing.T) {
	mr := miniredis.RunT(t)

	store, mem, err := Open(context.Background(), "redis://"+mr.Addr(), nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	rs, ok := store.(*RedisStore)
	if !ok || mem != nil {
		t.Fatalf("expected redis store without memory fallback, got %T mem=%v", store, mem)
	}
	t.Cleanup(func() { _ = rs.Close() })
}

func TestOpen_FallsBackWhenRedisUnreachable(t *testing.T) {
	store, mem, err := Open(context.Background(), "redis://127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if mem == nil || store != Store(mem) {
		t.Fatalf("expected memory store fallback, got %T", store)
	}
}
