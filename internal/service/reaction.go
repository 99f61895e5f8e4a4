package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"engagement/internal/cache"
	"engagement/internal/metrics"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
)

// ReactionService owns the reaction ledger for posts and shares.
type ReactionService struct {
	repos    repository.Repositories
	counts   cache.Store
	countTTL time.Duration
	notifier *Notifier
	metrics  *metrics.Recorder
}

func NewReactionService(
	repos repository.Repositories,
	counts cache.Store,
	countTTL time.Duration,
	notifier *Notifier,
	recorder *metrics.Recorder,
) *ReactionService {
	if counts == nil {
		counts = cache.NopStore{}
	}
	if countTTL <= 0 || countTTL > cache.StalenessWindow {
		countTTL = cache.StalenessWindow
	}
	return &ReactionService{
		repos:    repos,
		counts:   counts,
		countTTL: countTTL,
		notifier: notifier,
		metrics:  recorder,
	}
}

// Set adds or overwrites the actor's reaction and returns the fresh
// aggregate plus the cache keys the write invalidated.
func (s *ReactionService) Set(ctx context.Context, actorID, targetID string, kind model.TargetKind, rawType string) (*model.SetReactionResult, []string, error) {
	if !kind.Valid() {
		return nil, nil, model.ErrInvalidTargetKind
	}
	reactionType, err := model.ParseReactionType(rawType)
	if err != nil {
		return nil, nil, err
	}

	reaction, err := s.repos.Reactions.Upsert(ctx, actorID, targetID, kind, reactionType)
	s.metrics.Mutation(string(cache.MutationReactionSet), string(kind), err)
	if err != nil {
		return nil, nil, err
	}

	keys := cache.KeysFor(cache.MutationReactionSet, cache.Scope{ActorID: actorID, TargetID: targetID, TargetKind: kind})
	s.notifier.Committed(ctx, queue.NewReactionEvent(actorID, targetID, kind, reactionType, keys))

	counts, err := s.repos.Reactions.CountByType(ctx, targetID, kind)
	if err != nil {
		return nil, nil, fmt.Errorf("count reactions: %w", err)
	}

	log.Printf("[ReactionService] Set OK: actor=%s target=%s/%s type=%s", actorID, kind, targetID, reactionType)
	return &model.SetReactionResult{
		Type:          reaction.Type,
		Counts:        counts,
		Total:         counts.Total(),
		ActorReaction: reaction,
	}, keys, nil
}

// Remove deletes the actor's reaction. A missing reaction is not an error.
func (s *ReactionService) Remove(ctx context.Context, actorID, targetID string, kind model.TargetKind) (*model.RemoveReactionResult, []string, error) {
	if !kind.Valid() {
		return nil, nil, model.ErrInvalidTargetKind
	}

	removed, err := s.repos.Reactions.Delete(ctx, actorID, targetID, kind)
	s.metrics.Mutation(string(cache.MutationReactionRemove), string(kind), err)
	if err != nil {
		return nil, nil, err
	}

	var keys []string
	if removed {
		keys = cache.KeysFor(cache.MutationReactionRemove, cache.Scope{ActorID: actorID, TargetID: targetID, TargetKind: kind})
		s.notifier.Committed(ctx, queue.NewReactionEvent(actorID, targetID, kind, "", keys))
	}

	counts, err := s.repos.Reactions.CountByType(ctx, targetID, kind)
	if err != nil {
		return nil, nil, fmt.Errorf("count reactions: %w", err)
	}

	log.Printf("[ReactionService] Remove OK: actor=%s target=%s/%s removed=%t", actorID, kind, targetID, removed)
	return &model.RemoveReactionResult{
		Removed: removed,
		Counts:  counts,
		Total:   counts.Total(),
	}, keys, nil
}

// List returns the target's reactors newest first, optionally filtered by
// type (any casing).
func (s *ReactionService) List(ctx context.Context, targetID string, kind model.TargetKind, page model.Page, rawFilter string) (*model.PageResult[model.Reactor], error) {
	var filter *model.ReactionType
	if rawFilter != "" {
		t, err := model.ParseReactionType(rawFilter)
		if err != nil {
			return nil, err
		}
		filter = &t
	}
	if err := requireTarget(ctx, s.repos, targetID, kind); err != nil {
		return nil, err
	}

	reactors, total, err := s.repos.Reactions.List(ctx, targetID, kind, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	return model.NewPageResult(reactors, page, total), nil
}

// GetActorReaction returns the actor's reaction or nil when there is none.
func (s *ReactionService) GetActorReaction(ctx context.Context, actorID, targetID string, kind model.TargetKind) (*model.Reaction, error) {
	if err := requireTarget(ctx, s.repos, targetID, kind); err != nil {
		return nil, err
	}

	reaction, err := s.repos.Reactions.GetByActor(ctx, actorID, targetID, kind)
	if err != nil {
		if errors.Is(err, model.ErrReactionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reaction: %w", err)
	}
	return reaction, nil
}

// GetCounts serves the aggregate from the count cache, falling back to the
// ledger and repopulating the cache on a miss.
func (s *ReactionService) GetCounts(ctx context.Context, targetID string, kind model.TargetKind) (*model.ReactionSummary, error) {
	if !kind.Valid() {
		return nil, model.ErrInvalidTargetKind
	}
	key := cache.ReactionCountsKey(kind, targetID)

	var cached model.ReactionCounts
	found, err := s.counts.GetJSON(ctx, key, &cached)
	if err != nil {
		log.Printf("[ReactionService] Count cache read failed: key=%s err=%v", key, err)
	}
	s.metrics.CacheLookup(found)
	if found {
		counts := model.NewReactionCounts()
		for t, n := range cached {
			counts.Add(string(t), n)
		}
		return &model.ReactionSummary{Counts: counts, Total: counts.Total()}, nil
	}

	if err := requireTarget(ctx, s.repos, targetID, kind); err != nil {
		return nil, err
	}
	counts, err := s.repos.Reactions.CountByType(ctx, targetID, kind)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	if err := s.counts.SetJSON(ctx, key, counts, s.countTTL); err != nil {
		log.Printf("[ReactionService] Count cache write failed: key=%s err=%v", key, err)
	}
	return &model.ReactionSummary{Counts: counts, Total: counts.Total()}, nil
}
