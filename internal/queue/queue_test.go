package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement/internal/model"
)

func TestNewShareEvent_UsesShareCreationTime(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 123456000, time.UTC)
	share := &model.Share{ID: "s1", ActorID: "u1", OriginalPostID: "p1", CreatedAt: created}

	e := NewShareEvent(EventShareCreated, share, []string{"feed"})
	assert.Equal(t, created.UnixMicro(), e.ShareCreatedAt, "keeps microseconds")
	assert.Equal(t, "s1", e.ShareID)
	assert.Equal(t, "p1", e.PostID)
	assert.Equal(t, model.TargetShare, e.TargetKind)
}

func TestNewReactionEvent_EmptyTypeMeansRemoved(t *testing.T) {
	e := NewReactionEvent("u1", "s1", model.TargetShare, "", nil)
	assert.Equal(t, EventReactionRemoved, e.Type)
	assert.Equal(t, "s1", e.ShareID)
	assert.Empty(t, e.PostID)

	e = NewReactionEvent("u1", "p1", model.TargetPost, model.ReactionWow, nil)
	assert.Equal(t, EventReactionSet, e.Type)
	assert.Equal(t, "p1", e.PostID)
}

func TestParseEngagementEvent(t *testing.T) {
	e := NewLikeToggledEvent("u1", "p1", true, []string{"post:p1", "feed"})
	values, err := e.ToMap()
	require.NoError(t, err)
	assert.Equal(t, EventLikeToggled, values["type"])

	got, err := ParseEngagementEvent(values)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = ParseEngagementEvent(map[string]interface{}{"type": "x"})
	assert.Error(t, err)

	_, err = ParseEngagementEvent(map[string]interface{}{"data": "{not json"})
	assert.Error(t, err)
}

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	opts.DB = 1

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisStream_PublishReadAck(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	consumer := NewConsumer(client)
	require.NoError(t, consumer.EnsureGroup(ctx, StreamEngagement, ConsumerGroupEngagement))
	// Second call hits BUSYGROUP and must still succeed
	require.NoError(t, consumer.EnsureGroup(ctx, StreamEngagement, ConsumerGroupEngagement))

	publisher := NewPublisher(client)
	event := NewLikeToggledEvent("u1", "p1", true, []string{"likes:post:p1"})
	msgID, err := publisher.Publish(ctx, StreamEngagement, event)
	require.NoError(t, err)
	assert.NotEmpty(t, msgID)

	// A malformed entry is skipped and acked
	client.XAdd(ctx, &redis.XAddArgs{Stream: StreamEngagement, Values: map[string]interface{}{"type": "junk"}})

	msgs, err := consumer.Read(ctx, StreamEngagement, ConsumerGroupEngagement, "test-1", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msgID, msgs[0].ID)
	assert.Equal(t, event, msgs[0].Event)

	pending, err := consumer.Pending(ctx, StreamEngagement, ConsumerGroupEngagement)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	// Unacked messages come back through ReadPending
	replay, err := consumer.ReadPending(ctx, StreamEngagement, ConsumerGroupEngagement, "test-1", 10)
	require.NoError(t, err)
	require.Len(t, replay, 1)

	require.NoError(t, consumer.Ack(ctx, StreamEngagement, ConsumerGroupEngagement, msgID))
	pending, err = consumer.Pending(ctx, StreamEngagement, ConsumerGroupEngagement)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}
