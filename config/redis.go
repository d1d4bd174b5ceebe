package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	ctx    context.Context
	client *redis.Client
}

func NewRedisClient(ctx context.Context, url string) (*RedisClient, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	return &RedisClient{
		ctx:    ctx,
		client: client,
	}, nil
}

func (r *RedisClient) SetVal(key string, val string) error {
	return r.client.Set(r.ctx, key, val, 0).Err()
}

func (r *RedisClient) GetVal(key string) (string, error) {
	return r.client.Get(r.ctx, key).Result()
}

// SetBytes stores a binary payload with an expiry. The catalog cache uses it
// to share one copy of the gzipped instrument master across processes.
func (r *RedisClient) SetBytes(key string, val []byte, ttl time.Duration) error {
	return r.client.Set(r.ctx, key, val, ttl).Err()
}

func (r *RedisClient) GetBytes(key string) ([]byte, error) {
	return r.client.Get(r.ctx, key).Bytes()
}

func (r *RedisClient) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}
