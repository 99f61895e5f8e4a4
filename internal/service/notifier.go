package service

import (
	"context"
	"log"

	"engagement/internal/cache"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
)

// Notifier runs the post-commit side effects of a ledger write: the stale
// keys are dropped from Redis before the response goes out, then the event
// is published for workers and other replicas.
type Notifier struct {
	store     cache.Store
	publisher queue.Publisher
}

func NewNotifier(store cache.Store, publisher queue.Publisher) *Notifier {
	if store == nil {
		store = cache.NopStore{}
	}
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &Notifier{store: store, publisher: publisher}
}

// Committed never fails the request: the write is already durable and
// cached entries expire within the staleness window.
func (n *Notifier) Committed(ctx context.Context, event queue.EngagementEvent) {
	// Detach from client cancellation once the write has committed
	ctx = context.WithoutCancel(ctx)

	if err := n.store.Delete(ctx, event.InvalidateKeys...); err != nil {
		log.Printf("[Notifier] Invalidate FAILED: type=%s keys=%v err=%v", event.Type, event.InvalidateKeys, err)
	}

	msgID, err := n.publisher.Publish(ctx, queue.StreamEngagement, event)
	if err != nil {
		log.Printf("[Notifier] Failed to publish %s event: actor=%s target=%s/%s err=%v",
			event.Type, event.ActorID, event.TargetKind, event.TargetID, err)
		return
	}
	if msgID != "" {
		log.Printf("[Notifier] Published %s: target=%s/%s msgID=%s", event.Type, event.TargetKind, event.TargetID, msgID)
	}
}

// targetExists checks the post or share a reaction or comment points at.
func targetExists(ctx context.Context, repos repository.Repositories, targetID string, kind model.TargetKind) (bool, error) {
	switch kind {
	case model.TargetPost:
		return repos.Posts.Exists(ctx, targetID)
	case model.TargetShare:
		return repos.Shares.Exists(ctx, targetID)
	}
	return false, model.ErrInvalidTargetKind
}

func requireTarget(ctx context.Context, repos repository.Repositories, targetID string, kind model.TargetKind) error {
	ok, err := targetExists(ctx, repos, targetID, kind)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrTargetNotFound
	}
	return nil
}

// summaries looks up user identities, logging rather than failing on error.
func summaries(ctx context.Context, users repository.UserRepository, ids []string) map[string]model.UserSummary {
	if len(ids) == 0 {
		return map[string]model.UserSummary{}
	}
	m, err := users.GetSummaries(ctx, ids)
	if err != nil {
		log.Printf("[Service] Failed to load user summaries: n=%d err=%v", len(ids), err)
		return map[string]model.UserSummary{}
	}
	return m
}

// summaryOrID falls back to a bare id for users not projected yet.
func summaryOrID(m map[string]model.UserSummary, id string) *model.UserSummary {
	if s, ok := m[id]; ok {
		return &s
	}
	return &model.UserSummary{ID: id}
}
