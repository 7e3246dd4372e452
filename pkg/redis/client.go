package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantfolio/quantfolio/pkg/config"
)

// Client wraps go-redis behind the process config. With REDIS_ENABLED unset
// New returns a disabled client whose cache reads always miss, so callers
// fall through to their source of truth without any gating of their own.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis when the config enables it. A disabled config is not
// an error: the returned client is usable and simply does nothing.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Enabled reports whether a live connection backs the client.
func (c *Client) Enabled() bool {
	return c.rdb != nil
}

// Redis exposes the underlying go-redis client. Nil when disabled.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close releases the connection. Safe on a disabled client.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
