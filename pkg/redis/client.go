package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Queue key constants
const (
	// KeyMediaCleanup is the list of pending storage-gateway deletions.
	KeyMediaCleanup = "media:cleanup:pending"
)

// NewClient creates a new Redis client
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	dur := time.Since(start)
	if err != nil && err != redis.Nil {
		c.log.Info("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return err
}

// Delete removes a key from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	dur := time.Since(start)
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Duration("duration", dur),
		zap.Error(err))
	return err
}

// LPush pushes values onto the head of a list
func (c *Client) LPush(ctx context.Context, key string, values ...interface{}) error {
	start := time.Now()
	err := c.rdb.LPush(ctx, key, values...).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_lpush",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_lpush",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Int("values", len(values)),
			zap.Duration("duration", dur))
	}
	return err
}

// BRPop pops the tail of a list, blocking up to timeout. Returns the nil
// sentinel when the timeout elapses with no element available.
func (c *Client) BRPop(ctx context.Context, timeout time.Duration, key string) (string, error) {
	vals, err := c.rdb.BRPop(ctx, timeout, key).Result()
	if err != nil {
		return "", err
	}
	// BRPOP returns [key, value]
	if len(vals) != 2 {
		return "", fmt.Errorf("unexpected BRPOP reply length %d", len(vals))
	}
	return vals[1], nil
}

// LLen returns the length of a list
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	return c.rdb.LLen(ctx, key).Result()
}

// IsNil reports whether err is the go-redis nil-reply sentinel
func IsNil(err error) bool {
	return err == redis.Nil
}

// prefixForLog trims a key to its first two segments so logs never carry
// user identifiers.
func prefixForLog(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 3 {
		return key
	}
	return parts[0] + ":" + parts[1]
}
