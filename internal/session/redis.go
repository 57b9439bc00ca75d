package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "jobdash:session:"

type RedisStore struct {
	client *redis.Client
	logger *log.Logger
	now    func() time.Time

	warnedUnavailable atomic.Bool
}

func NewRedisStore(client *redis.Client, logger *log.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger, now: time.Now}
}

// Open picks the store for redisURL: a redis store when the URL is set and
// the server answers, the memory store otherwise.
func Open(ctx context.Context, redisURL string, logger *log.Logger) (Store, *MemoryStore, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		mem := NewMemoryStore()
		return mem, mem, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if logger != nil {
			logger.Printf("[Session] Redis unavailable, using memory store: %v", err)
		}
		_ = client.Close()
		mem := NewMemoryStore()
		return mem, mem, nil
	}

	return NewRedisStore(client, logger), nil, nil
}

func (r *RedisStore) Put(ctx context.Context, st State) error {
	id := strings.TrimSpace(st.ID)
	if id == "" {
		return ErrInvalid
	}

	ttl := time.Duration(0)
	if !st.ExpiresAt.IsZero() {
		ttl = st.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return ErrInvalid
		}
	}

	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKeyPrefix+id, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (State, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return State{}, ErrNotFound
	}

	b, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, ErrNotFound
		}
		r.warnUnavailableOnce(err)
		return State{}, err
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return State{}, err
	}
	if st.Expired(r.now()) {
		return State{}, ErrNotFound
	}
	return st, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisStore) warnUnavailableOnce(err error) {
	if r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Printf("[Session] Redis error: %v", err)
	}
}

var _ Store = (*RedisStore)(nil)
