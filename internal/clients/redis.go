// Package clients provides wrappers for external service clients.
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SeenTTL bounds how long a request identifier is remembered for
	// duplicate detection.
	SeenTTL = 24 * time.Hour
)

// RedisClient wraps the Redis client with application-specific operations.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client from the connection URL.
func NewRedisClient(url string) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	return &RedisClient{client: client}, nil
}

// Ping checks connectivity to Redis.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// SeenRequest checks whether an event with this request identifier was
// already ingested. Returns true when a duplicate, false when first seen.
func (c *RedisClient) SeenRequest(ctx context.Context, requestID string) (bool, error) {
	key := fmt.Sprintf("seen_request:%s", requestID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen_request key: %w", err)
	}
	return exists > 0, nil
}

// MarkSeen records the request identifier as ingested, with TTL.
func (c *RedisClient) MarkSeen(ctx context.Context, requestID string) error {
	key := fmt.Sprintf("seen_request:%s", requestID)
	value := time.Now().UTC().Format(time.RFC3339)
	return c.client.Set(ctx, key, value, SeenTTL).Err()
}
