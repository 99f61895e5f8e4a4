package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client so the count cache, UI state persister,
// event stream and share feed share one connection pool.
type Client struct {
	*redis.Client
}

// NewClient creates a new Redis client from the given URL.
// URL format: redis://[:password@]host:port[/db]
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Client{Client: redis.NewClient(opts)}, nil
}

// Ping verifies the connection to Redis.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// RetryPolicy bounds ConnectWithRetry.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy waits 1s, 2s, 4s... up to 15s between five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: 15 * time.Second}
}

// ConnectWithRetry pings Redis with exponential backoff. It returns the
// last error when every attempt fails; callers then run without Redis.
func ConnectWithRetry(ctx context.Context, redisURL string, policy RetryPolicy) (*Client, error) {
	client, err := NewClient(redisURL)
	if err != nil {
		return nil, err
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx)
		cancel()
		if err == nil {
			log.Printf("[Redis] Connected on attempt %d", attempt)
			return client, nil
		}
		if attempt >= policy.MaxAttempts {
			break
		}

		delay := policy.InitialDelay * time.Duration(1<<uint(attempt-1))
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
		log.Printf("[Redis] Connect failed (attempt %d/%d): %v. Retrying in %v...", attempt, policy.MaxAttempts, err, delay)

		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	client.Close()
	return nil, fmt.Errorf("redis unavailable after %d attempts: %w", policy.MaxAttempts, err)
}
