package seen

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the Redis set used when no key is configured.
const DefaultRedisKey = "tagtree:seen"

// Redis is a Set stored as a Redis set under one key.
type Redis struct {
	rdb redis.UniversalClient
	key string
}

// NewRedis returns a set stored under key. An empty key uses DefaultRedisKey.
func NewRedis(rdb redis.UniversalClient, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Contains(ctx context.Context, url string) (bool, error) {
	return r.rdb.SIsMember(ctx, r.key, url).Result()
}

func (r *Redis) Add(ctx context.Context, url string) error {
	return r.rdb.SAdd(ctx, r.key, url).Err()
}

func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.rdb.SCard(ctx, r.key).Result()
	return int(n), err
}

// Clear deletes the whole set.
func (r *Redis) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

var _ Set = (*Redis)(nil)
