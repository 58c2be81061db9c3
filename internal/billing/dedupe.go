package billing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers processed provider event ids. Claim returns false for
// an id already claimed; Release forgets an id whose processing failed so
// the provider's retry is handled.
type Deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// RedisDeduper stores claimed ids with SETNX and a TTL longer than the
// provider's retry window.
type RedisDeduper struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper returns nil when rdb is nil so callers can pass the
// result straight to the service.
func NewRedisDeduper(rdb *redis.Client) Deduper {
	if rdb == nil {
		return nil
	}
	return &RedisDeduper{rdb: rdb, prefix: "billing:event:", ttl: 72 * time.Hour}
}

func (d *RedisDeduper) Claim(ctx context.Context, eventID string) (bool, error) {
	return d.rdb.SetNX(ctx, d.prefix+eventID, time.Now().UTC().Unix(), d.ttl).Result()
}

func (d *RedisDeduper) Release(ctx context.Context, eventID string) error {
	return d.rdb.Del(ctx, d.prefix+eventID).Err()
}
