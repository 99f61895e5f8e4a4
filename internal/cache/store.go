package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches small JSON documents (aggregate counts) under the keys of
// the invalidation contract.
type Store interface {
	// GetJSON decodes the value at key into dest. found=false on a miss.
	GetJSON(ctx context.Context, key string, dest any) (found bool, err error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete drops keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// RedisStore implements Store with plain Redis strings.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store backed by Redis.
func NewRedisStore(client *redis.Client) Store {
	return &RedisStore{client: client}
}

func (s *RedisStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		log.Printf("[Cache] Get FAILED: key=%s err=%v", key, err)
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry is a miss; the next write replaces it
		log.Printf("[Cache] Get decode error: key=%s err=%v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[Cache] Set FAILED: key=%s err=%v", key, err)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	startTime := time.Now()
	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		log.Printf("[Cache] Delete FAILED: keys=%v err=%v", keys, err)
		return fmt.Errorf("delete keys: %w", err)
	}
	log.Printf("[Cache] Delete OK: keys=%d deleted=%d duration=%v", len(keys), deleted, time.Since(startTime))
	return nil
}

// NopStore is used when Redis is not configured: every read misses.
type NopStore struct{}

func (NopStore) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (NopStore) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (NopStore) Delete(context.Context, ...string) error                   { return nil }
