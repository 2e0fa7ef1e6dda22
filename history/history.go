// Package history keeps the recently viewed products of each signed-in user.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// MaxItems is the number of products remembered per user
	MaxItems = 10
	// TTL expires the history of users who stop browsing
	TTL = 30 * 24 * time.Hour
)

// Store records product views, most recent first and without duplicates
type Store interface {
	Record(ctx context.Context, userID string, productID uint) error
	Recent(ctx context.Context, userID string, n int) ([]uint, error)
	Clear(ctx context.Context, userID string) error
}

// New returns a Redis store when redis.url is set, otherwise an in-memory store
func New(cfg config.RedisConfig, logger *zap.Logger) (Store, error) {
	if cfg.URL == "" {
		logger.Info("redis.url not set, browsing history is kept in memory")
		return NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis.url: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func clampN(n int) int {
	if n <= 0 || n > MaxItems {
		return MaxItems
	}
	return n
}
