package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"engagement/internal/cache"
	"engagement/internal/model"
	"engagement/internal/repository"
)

const (
	// FeedDefaultLimit is the default number of shares per page
	FeedDefaultLimit = 10

	// FeedMaxLimit is the maximum number of shares per page
	FeedMaxLimit = 50
)

// FeedService serves the global feed of public shares, newest first.
type FeedService struct {
	feed   cache.ShareFeed // nil when Redis is unavailable
	shares *ShareService
	repos  repository.Repositories
}

func NewFeedService(feed cache.ShareFeed, shares *ShareService, repos repository.Repositories) *FeedService {
	return &FeedService{
		feed:   feed,
		shares: shares,
		repos:  repos,
	}
}

// GetFeed returns one page of the feed.
//
// Flow:
// 1. Without a cached feed, page straight from the shares table
// 2. Warm the sorted set when it expired
// 3. Read limit+1 share IDs ordered after the (createdAt, id) cursor
// 4. Hydrate from the ledger, skipping shares deleted or hidden since
func (s *FeedService) GetFeed(ctx context.Context, cursor *string, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	var after *model.FeedCursor
	if cursor != nil && *cursor != "" {
		parsed, err := model.ParseFeedCursor(*cursor)
		if err != nil {
			return nil, err
		}
		after = &parsed
	}

	if s.feed == nil {
		return s.feedFromDB(ctx, after, limit)
	}

	exists, err := s.feed.Exists(ctx)
	if err != nil {
		log.Printf("[FeedService] Cache check failed: %v", err)
		return s.feedFromDB(ctx, after, limit)
	}
	if !exists {
		log.Printf("[FeedService] Cache miss, warming...")
		if err := s.warmCache(ctx); err != nil {
			log.Printf("[FeedService] Cache warm failed: %v", err)
			return s.feedFromDB(ctx, after, limit)
		}
	}

	entries, err := s.feed.GetFeed(ctx, after, limit+1)
	if err != nil {
		log.Printf("[FeedService] GetFeed cache error: %v", err)
		return s.feedFromDB(ctx, after, limit)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	shareIDs := make([]string, len(entries))
	for i, e := range entries {
		shareIDs[i] = e.ShareID
	}
	byID, err := s.repos.Shares.GetByIDs(ctx, shareIDs)
	if err != nil {
		return nil, fmt.Errorf("get shares by ids: %w", err)
	}
	shares := make([]model.Share, 0, len(shareIDs))
	for _, id := range shareIDs {
		sh, ok := byID[id]
		if !ok || sh.Audience != model.AudiencePublic {
			continue
		}
		shares = append(shares, sh)
	}
	s.shares.hydrateSlice(ctx, shares)

	var nextCursor *string
	if hasMore && len(entries) > 0 {
		c := entries[len(entries)-1].Cursor().String()
		nextCursor = &c
	}

	log.Printf("[FeedService] GetFeed OK: shares=%d hasMore=%v duration=%v",
		len(shares), hasMore, time.Since(startTime))
	return &model.FeedResponse{Shares: shares, NextCursor: nextCursor, HasMore: hasMore}, nil
}

func (s *FeedService) feedFromDB(ctx context.Context, after *model.FeedCursor, limit int) (*model.FeedResponse, error) {
	shares, err := s.repos.Shares.ListRecent(ctx, after, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list recent shares: %w", err)
	}

	hasMore := len(shares) > limit
	if hasMore {
		shares = shares[:limit]
	}
	if shares == nil {
		shares = []model.Share{}
	}
	s.shares.hydrateSlice(ctx, shares)

	var nextCursor *string
	if hasMore {
		last := shares[len(shares)-1]
		c := model.FeedCursor{CreatedAt: last.CreatedAt, ShareID: last.ID}.String()
		nextCursor = &c
	}
	return &model.FeedResponse{Shares: shares, NextCursor: nextCursor, HasMore: hasMore}, nil
}

// warmCache loads the newest public shares into the sorted set.
func (s *FeedService) warmCache(ctx context.Context) error {
	startTime := time.Now()

	shares, err := s.repos.Shares.ListRecent(ctx, nil, cache.ShareFeedCap)
	if err != nil {
		return fmt.Errorf("list recent shares: %w", err)
	}
	if len(shares) == 0 {
		log.Printf("[FeedService] No shares to warm")
		return nil
	}

	scores := make([]cache.ShareScore, len(shares))
	for i, sh := range shares {
		scores[i] = cache.ShareScore{ShareID: sh.ID, Timestamp: sh.CreatedAt.UnixMicro()}
	}
	if err := s.feed.WarmCache(ctx, scores); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: shares=%d duration=%v", len(shares), time.Since(startTime))
	return nil
}
