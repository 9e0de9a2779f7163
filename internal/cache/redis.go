package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/config"
	"github.com/Dibakarroy1997/random-tech-tweet-generator-backend/pkg/logging"
)

// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
var ErrCacheDisabled = fmt.Errorf("cache is disabled")

// userIDTTL bounds how long a handle-to-id mapping is kept; handles can be
// renamed so the mapping is not permanent
const userIDTTL = 24 * time.Hour

// Cache wraps an optional Redis client used to memoize user-id lookups.
// All methods are nil-safe so callers need no enabled check.
type Cache struct {
	client *redis.Client
}

// New creates a new Redis cache client, or nil when disabled
func New(cfg *config.RedisConfig) (*Cache, error) {
	if !cfg.Enabled {
		logging.GetLogger().Info("Redis cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Cache{client: client}, nil
}

// GetUserID retrieves a cached user id for a handle
func (c *Cache) GetUserID(ctx context.Context, handle string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrCacheDisabled
	}
	return c.client.Get(ctx, userKey(handle)).Result()
}

// SetUserID caches a handle-to-id mapping
func (c *Cache) SetUserID(ctx context.Context, handle, userID string) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Set(ctx, userKey(handle), userID, userIDTTL).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Health checks Redis health
func (c *Cache) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrCacheDisabled
	}
	return c.client.Ping(ctx).Err()
}

func userKey(handle string) string {
	return "twitter:user:" + handle
}
