package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше.
var ErrCacheMiss = errors.New("cache miss")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// IncrWithTTL увеличивает счётчик; TTL ставится только при создании ключа.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
