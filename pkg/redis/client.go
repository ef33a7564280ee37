package redis

import (
	"context"
	"time"

	"github.com/curasense/auth-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds the Redis connection settings. When Enabled is false the
// client is a no-op and every read is a miss; callers fall through to the
// database.
type Config struct {
	Addr         string
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Client struct {
	rdb     *redis.Client
	enabled bool
}

// NewClient connects to Redis. A connection failure downgrades the client to
// disabled rather than failing startup; the cache is an optimization, not a
// dependency.
func NewClient(cfg Config) *Client {
	if !cfg.Enabled {
		return &Client{enabled: false}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.GetLogger().Warn("Redis unreachable, cache disabled",
			zap.String("address", cfg.Addr),
			zap.Error(err),
		)
		return &Client{enabled: false}
	}

	logger.GetLogger().Info("Connected to Redis",
		zap.String("address", cfg.Addr),
		zap.Int("database", cfg.DB),
	)

	return &Client{rdb: rdb, enabled: true}
}

// IsEnabled reports whether the cache backend is usable.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return redis.ErrClosed
	}
	return c.rdb.Ping(ctx).Err()
}

// Get returns the raw value for key, or ("", false) on a miss or error.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().Warn("Redis get failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return "", false
	}
	return val, true
}

// Set stores the value with a TTL; failures are logged and swallowed.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !c.enabled {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.GetLogger().Warn("Redis set failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Delete removes a key; missing keys are not an error.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if !c.enabled || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.GetLogger().Warn("Redis delete failed",
			zap.Error(err),
		)
	}
}

func (c *Client) Close() error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Close()
}
