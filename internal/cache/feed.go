package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"engagement/internal/model"
)

const (
	// ShareFeedKey is the sorted set holding the global share feed
	ShareFeedKey = "feed:shares"

	// ShareFeedCap is the maximum number of shares kept in the feed
	ShareFeedCap = 500

	// ShareFeedTTL is the TTL for the feed set (7 days)
	ShareFeedTTL = 7 * 24 * time.Hour
)

// ShareScore is a share with its creation time in Unix microseconds.
// Microseconds stay exact in a float64 score and match Postgres.
type ShareScore struct {
	ShareID   string
	Timestamp int64
}

// Cursor returns the feed position of this entry.
func (s ShareScore) Cursor() model.FeedCursor {
	return model.FeedCursor{CreatedAt: time.UnixMicro(s.Timestamp).UTC(), ShareID: s.ShareID}
}

// ShareFeed is the cached, newest-first list of public shares.
type ShareFeed interface {
	// AddShare inserts a share, trims the set to the cap and refreshes TTL.
	AddShare(ctx context.Context, shareID string, timestamp int64) error

	RemoveShare(ctx context.Context, shareID string) error

	// GetFeed returns shares ordered by (score, id) descending. With a
	// cursor, only entries strictly below it are returned.
	GetFeed(ctx context.Context, after *model.FeedCursor, limit int) ([]ShareScore, error)

	// WarmCache bulk-inserts shares after the set expired.
	WarmCache(ctx context.Context, shares []ShareScore) error

	Size(ctx context.Context) (int64, error)

	// Exists reports whether the feed set is present. The service warms it
	// when this returns false.
	Exists(ctx context.Context) (bool, error)
}

// RedisShareFeed implements ShareFeed using a Redis sorted set.
type RedisShareFeed struct {
	client *redis.Client
}

// NewShareFeed creates a ShareFeed backed by Redis.
func NewShareFeed(client *redis.Client) ShareFeed {
	return &RedisShareFeed{client: client}
}

// AddShare pipelines ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE.
func (f *RedisShareFeed) AddShare(ctx context.Context, shareID string, timestamp int64) error {
	startTime := time.Now()

	pipe := f.client.Pipeline()
	pipe.ZAdd(ctx, ShareFeedKey, redis.Z{Score: float64(timestamp), Member: shareID})
	// 0 is the lowest score (oldest); keep the newest ShareFeedCap
	pipe.ZRemRangeByRank(ctx, ShareFeedKey, 0, int64(-ShareFeedCap-1))
	pipe.Expire(ctx, ShareFeedKey, ShareFeedTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ShareFeed] AddShare FAILED: share=%s err=%v", shareID, err)
		return fmt.Errorf("add share to feed: %w", err)
	}

	log.Printf("[ShareFeed] AddShare OK: share=%s timestamp=%d duration=%v",
		shareID, timestamp, time.Since(startTime))
	return nil
}

func (f *RedisShareFeed) RemoveShare(ctx context.Context, shareID string) error {
	removed, err := f.client.ZRem(ctx, ShareFeedKey, shareID).Result()
	if err != nil {
		log.Printf("[ShareFeed] RemoveShare FAILED: share=%s err=%v", shareID, err)
		return fmt.Errorf("remove share from feed: %w", err)
	}
	log.Printf("[ShareFeed] RemoveShare OK: share=%s removed=%d", shareID, removed)
	return nil
}

// GetFeed pages by score with an inclusive bound. Members sharing the
// cursor's score come back in reverse lexicographic order, so those at or
// above the cursor id were already served and are skipped.
func (f *RedisShareFeed) GetFeed(ctx context.Context, after *model.FeedCursor, limit int) ([]ShareScore, error) {
	startTime := time.Now()

	var results []redis.Z
	var err error
	if after == nil {
		results, err = f.client.ZRevRangeWithScores(ctx, ShareFeedKey, 0, int64(limit-1)).Result()
	} else {
		bound := strconv.FormatInt(after.CreatedAt.UnixMicro(), 10)
		var ties int64
		ties, err = f.client.ZCount(ctx, ShareFeedKey, bound, bound).Result()
		if err == nil {
			results, err = f.client.ZRevRangeByScoreWithScores(ctx, ShareFeedKey, &redis.ZRangeBy{
				Min:   "-inf",
				Max:   bound,
				Count: int64(limit) + ties,
			}).Result()
		}
	}
	if err != nil {
		log.Printf("[ShareFeed] GetFeed FAILED: err=%v", err)
		return nil, fmt.Errorf("get feed: %w", err)
	}

	// Refresh TTL on access
	f.client.Expire(ctx, ShareFeedKey, ShareFeedTTL)

	entries := make([]ShareScore, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected feed member %v", z.Member)
		}
		entry := ShareScore{ShareID: member, Timestamp: int64(z.Score)}
		if after != nil && !after.Older(time.UnixMicro(entry.Timestamp), member) {
			continue
		}
		if len(entries) == limit {
			break
		}
		entries = append(entries, entry)
	}

	log.Printf("[ShareFeed] GetFeed OK: returned=%d duration=%v", len(entries), time.Since(startTime))
	return entries, nil
}

func (f *RedisShareFeed) WarmCache(ctx context.Context, shares []ShareScore) error {
	if len(shares) == 0 {
		log.Printf("[ShareFeed] WarmCache: shares=0 (nothing to warm)")
		return nil
	}
	startTime := time.Now()

	members := make([]redis.Z, len(shares))
	for i, s := range shares {
		members[i] = redis.Z{Score: float64(s.Timestamp), Member: s.ShareID}
	}

	pipe := f.client.Pipeline()
	pipe.ZAdd(ctx, ShareFeedKey, members...)
	pipe.ZRemRangeByRank(ctx, ShareFeedKey, 0, int64(-ShareFeedCap-1))
	pipe.Expire(ctx, ShareFeedKey, ShareFeedTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ShareFeed] WarmCache FAILED: shares=%d err=%v", len(shares), err)
		return fmt.Errorf("warm feed: %w", err)
	}

	log.Printf("[ShareFeed] WarmCache OK: shares=%d duration=%v", len(shares), time.Since(startTime))
	return nil
}

func (f *RedisShareFeed) Size(ctx context.Context) (int64, error) {
	size, err := f.client.ZCard(ctx, ShareFeedKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get feed size: %w", err)
	}
	return size, nil
}

func (f *RedisShareFeed) Exists(ctx context.Context) (bool, error) {
	n, err := f.client.Exists(ctx, ShareFeedKey).Result()
	if err != nil {
		log.Printf("[ShareFeed] Exists FAILED: err=%v", err)
		return false, fmt.Errorf("check feed exists: %w", err)
	}
	return n > 0, nil
}
