package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	valuePending = "pending"
	valueDone    = "done"
)

// Store hands out single-use claims on keys. The first Claim for a key wins
// until the TTL expires or the key is released. A claim stays pending until
// MarkDone records that the guarded work finished.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builds "<scope>:<kind>:<id>", e.g. notification:ORDER_CREATED:42.
func Key(scope, kind string, id int64) string {
	return fmt.Sprintf("%s:%s:%d", scope, kind, id)
}

// Claim reports whether the caller now owns key.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, valuePending, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: claim %s: %w", key, err)
	}
	return ok, nil
}

// Release drops a claim so a later delivery can retry the work.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("idempotency: release %s: %w", key, err)
	}
	return nil
}

// MarkDone records that the work behind key completed. The TTL restarts.
func (s *Store) MarkDone(ctx context.Context, key string) error {
	if err := s.rdb.Set(ctx, key, valueDone, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: mark %s done: %w", key, err)
	}
	return nil
}

// Done reports whether key was marked done. A pending or foreign value is not done.
func (s *Store) Done(ctx context.Context, key string) (bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("idempotency: read %s: %w", key, err)
	}
	return v == valueDone, nil
}
