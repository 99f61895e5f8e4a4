package queue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message represents a message read from a Redis stream.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event EngagementEvent
}

// Consumer defines the interface for consuming events from a stream.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read blocks up to block for new messages delivered to this consumer.
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// Ack removes messages from the consumer's pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error

	// Pending returns the number of unacknowledged messages for the group.
	Pending(ctx context.Context, stream, group string) (int64, error)
}

// PendingReader is implemented by consumers that can replay messages
// delivered to a consumer but never acknowledged (crash recovery).
type PendingReader interface {
	ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error)
}

// StaleClaimer is implemented by consumers that can take over messages a
// dead replica read but never acknowledged.
type StaleClaimer interface {
	ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]Message, error)
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
}

// NewConsumer creates a new Consumer backed by Redis Streams.
func NewConsumer(client *redis.Client) *RedisConsumer {
	return &RedisConsumer{client: client}
}

// EnsureGroup runs XGROUP CREATE ... MKSTREAM starting at "$": events
// published before the first worker ever started only carried cache keys
// that have long since expired.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			log.Printf("[Consumer] EnsureGroup: stream=%s group=%s (already exists)", stream, group)
			return nil
		}
		log.Printf("[Consumer] EnsureGroup FAILED: stream=%s group=%s err=%v", stream, group, err)
		return fmt.Errorf("create consumer group: %w", err)
	}

	log.Printf("[Consumer] EnsureGroup OK: stream=%s group=%s (created)", stream, group)
	return nil
}

// Read reads new messages with XREADGROUP ">".
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		// Timeout - no new messages
		return nil, nil
	}
	if err != nil {
		log.Printf("[Consumer] Read FAILED: stream=%s group=%s consumer=%s err=%v", stream, group, consumer, err)
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	messages, malformed := parseStreams(streams)
	if len(malformed) > 0 {
		// Malformed messages can never succeed; ack them so they don't linger
		_ = c.Ack(ctx, stream, group, malformed...)
	}
	log.Printf("[Consumer] Read OK: stream=%s consumer=%s count=%d", stream, consumer, len(messages))
	return messages, nil
}

// Ack acknowledges messages using XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		log.Printf("[Consumer] Ack FAILED: stream=%s group=%s ids=%v err=%v", stream, group, messageIDs, err)
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

// Pending returns the count of pending messages for the consumer group.
func (c *RedisConsumer) Pending(ctx context.Context, stream, group string) (int64, error) {
	info, err := c.client.XPending(ctx, stream, group).Result()
	if err != nil {
		log.Printf("[Consumer] Pending FAILED: stream=%s group=%s err=%v", stream, group, err)
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return info.Count, nil
}

// ReadPending reads messages that were delivered to consumer but not yet
// acknowledged, using "0" instead of ">".
func (c *RedisConsumer) ReadPending(ctx context.Context, stream, group, consumer string, count int64) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, "0"},
		Count:    count,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		log.Printf("[Consumer] ReadPending FAILED: stream=%s consumer=%s err=%v", stream, consumer, err)
		return nil, fmt.Errorf("xreadgroup pending: %w", err)
	}

	messages, malformed := parseStreams(streams)
	if len(malformed) > 0 {
		_ = c.Ack(ctx, stream, group, malformed...)
	}
	log.Printf("[Consumer] ReadPending OK: stream=%s consumer=%s count=%d", stream, consumer, len(messages))
	return messages, nil
}

// ClaimStale moves messages idle for at least minIdle in the group's
// pending list to consumer with XAUTOCLAIM and returns them.
func (c *RedisConsumer) ClaimStale(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int64) ([]Message, error) {
	claimed, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    group,
		Consumer: consumer,
		MinIdle:  minIdle,
		Start:    "0-0",
		Count:    count,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		log.Printf("[Consumer] ClaimStale FAILED: stream=%s consumer=%s err=%v", stream, consumer, err)
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}

	messages, malformed := parseMessages(claimed)
	if len(malformed) > 0 {
		_ = c.Ack(ctx, stream, group, malformed...)
	}
	if len(messages) > 0 {
		log.Printf("[Consumer] ClaimStale OK: stream=%s consumer=%s count=%d", stream, consumer, len(messages))
	}
	return messages, nil
}

func parseStreams(streams []redis.XStream) (messages []Message, malformed []string) {
	for _, s := range streams {
		m, bad := parseMessages(s.Messages)
		messages = append(messages, m...)
		malformed = append(malformed, bad...)
	}
	return messages, malformed
}

func parseMessages(raw []redis.XMessage) (messages []Message, malformed []string) {
	for _, msg := range raw {
		event, err := ParseEngagementEvent(msg.Values)
		if err != nil {
			log.Printf("[Consumer] parse error: msgID=%s err=%v", msg.ID, err)
			malformed = append(malformed, msg.ID)
			continue
		}
		messages = append(messages, Message{ID: msg.ID, Event: event})
	}
	return messages, malformed
}
