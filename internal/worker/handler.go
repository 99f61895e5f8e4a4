package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"engagement/internal/cache"
	"engagement/internal/model"
	"engagement/internal/queue"
)

// Handler processes engagement events from the queue.
type Handler struct {
	store cache.Store
	feed  cache.ShareFeed // nil when the share feed is not cached
}

// NewHandler creates a new event handler. feed may be nil.
func NewHandler(store cache.Store, feed cache.ShareFeed) *Handler {
	return &Handler{
		store: store,
		feed:  feed,
	}
}

// HandleEvent drops the cache keys the event carries, then routes share
// events to the feed maintenance steps.
func (h *Handler) HandleEvent(ctx context.Context, event queue.EngagementEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventReactionSet, queue.EventReactionRemoved,
		queue.EventLikeToggled,
		queue.EventCommentAdded, queue.EventCommentUpdated, queue.EventCommentDeleted:
		err = h.invalidate(ctx, event)
	case queue.EventShareCreated, queue.EventShareUpdated:
		err = h.handleShareUpserted(ctx, event)
	case queue.EventShareDeleted:
		err = h.handleShareDeleted(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s keys=%d duration=%v",
		event.Type, len(event.InvalidateKeys), time.Since(startTime))
	return nil
}

func (h *Handler) invalidate(ctx context.Context, event queue.EngagementEvent) error {
	if len(event.InvalidateKeys) == 0 {
		return nil
	}
	if err := h.store.Delete(ctx, event.InvalidateKeys...); err != nil {
		return fmt.Errorf("invalidate keys: %w", err)
	}
	return nil
}

// handleShareUpserted keeps the feed in line with the share's audience:
// public shares are scored by creation time, others are removed.
func (h *Handler) handleShareUpserted(ctx context.Context, event queue.EngagementEvent) error {
	if err := h.invalidate(ctx, event); err != nil {
		return err
	}
	if h.feed == nil {
		return nil
	}

	if event.Audience == "" || event.Audience == model.AudiencePublic {
		score := event.ShareCreatedAt
		if score == 0 {
			// events written before the field existed carry milliseconds
			score = event.Timestamp * 1000
		}
		if err := h.feed.AddShare(ctx, event.ShareID, score); err != nil {
			return fmt.Errorf("add share to feed: %w", err)
		}
		log.Printf("[Worker] ShareUpserted: share=%s added to feed", event.ShareID)
		return nil
	}

	if err := h.feed.RemoveShare(ctx, event.ShareID); err != nil {
		return fmt.Errorf("remove share from feed: %w", err)
	}
	log.Printf("[Worker] ShareUpserted: share=%s audience=%s removed from feed", event.ShareID, event.Audience)
	return nil
}

func (h *Handler) handleShareDeleted(ctx context.Context, event queue.EngagementEvent) error {
	if err := h.invalidate(ctx, event); err != nil {
		return err
	}
	if h.feed == nil {
		return nil
	}
	if err := h.feed.RemoveShare(ctx, event.ShareID); err != nil {
		return fmt.Errorf("remove share from feed: %w", err)
	}
	log.Printf("[Worker] ShareDeleted: share=%s removed from feed", event.ShareID)
	return nil
}
