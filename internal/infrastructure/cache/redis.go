package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Client is a thin Redis wrapper used for short-TTL caching of market quotes.
type Client struct {
	client     *redis.Client
	logger     *zap.Logger
	prefix     string
	defaultTTL time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

// New connects to Redis and verifies the connection.
func New(cfg *Config, logger *zap.Logger) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		client:     client,
		logger:     logger,
		prefix:     "quant:",
		defaultTTL: time.Minute,
	}, nil
}

// Get returns the cached value, or "" when the key is absent.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Ping checks connectivity, used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
