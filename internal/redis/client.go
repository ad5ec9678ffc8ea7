package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

func verifyURLKey(userCode string) string {
	return fmt.Sprintf("verifyurl:%s", userCode)
}

// GetVerifyURL returns the cached authorization URL for a pairing code, or
// empty string on a miss. A record's URL never changes after creation, so a
// hit is always current.
func (c *Client) GetVerifyURL(ctx context.Context, userCode string) (string, error) {
	val, err := c.Get(ctx, verifyURLKey(userCode)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetVerifyURL caches the authorization URL. The TTL must not exceed the
// pairing TTL so the cache never outlives the record by more than a sweep.
func (c *Client) SetVerifyURL(ctx context.Context, userCode, url string, ttl time.Duration) error {
	return c.Set(ctx, verifyURLKey(userCode), url, ttl).Err()
}
