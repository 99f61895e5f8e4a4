package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"engagement/internal/model"
)

type shareRepository struct {
	s *Store
}

func (r *shareRepository) Upsert(_ context.Context, share *model.Share, update model.ShareUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[share.OriginalPostID]; !ok {
		return false, model.ErrPostNotFound
	}

	now := r.s.now()
	for id, existing := range r.s.shares {
		if existing.ActorID == share.ActorID && existing.OriginalPostID == share.OriginalPostID {
			if update.Caption {
				existing.Caption = share.Caption
			}
			if update.Audience {
				existing.Audience = share.Audience
			}
			existing.UpdatedAt = now
			r.s.shares[id] = existing
			*share = existing
			return false, nil
		}
	}

	stored := model.Share{
		ID:             uuid.NewString(),
		ActorID:        share.ActorID,
		OriginalPostID: share.OriginalPostID,
		Caption:        share.Caption,
		Audience:       share.Audience,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.s.shares[stored.ID] = stored
	*share = stored
	return true, nil
}

func (r *shareRepository) GetByID(_ context.Context, id string) (*model.Share, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	share, ok := r.s.shares[id]
	if !ok {
		return nil, model.ErrShareNotFound
	}
	return &share, nil
}

func (r *shareRepository) GetByIDs(_ context.Context, ids []string) (map[string]model.Share, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]model.Share, len(ids))
	for _, id := range ids {
		if share, ok := r.s.shares[id]; ok {
			result[id] = share
		}
	}
	return result, nil
}

func (r *shareRepository) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.shares[id]
	return ok, nil
}

func (r *shareRepository) DeleteCascade(_ context.Context, shareID, actorID string) (*model.Share, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	share, ok := r.s.shares[shareID]
	if !ok {
		return nil, model.ErrShareNotFound
	}
	if share.ActorID != actorID {
		return nil, model.ErrNotShareOwner
	}

	for key := range r.s.reactions {
		if key.kind == model.TargetShare && key.targetID == shareID {
			delete(r.s.reactions, key)
		}
	}
	for id, c := range r.s.comments {
		if c.TargetKind == model.TargetShare && c.TargetID == shareID {
			delete(r.s.comments, id)
		}
	}
	delete(r.s.shares, shareID)
	return &share, nil
}

func (r *shareRepository) ListByPost(_ context.Context, postID string, page model.Page) ([]model.Share, int, error) {
	return r.list(func(s model.Share) bool { return s.OriginalPostID == postID }, page)
}

func (r *shareRepository) ListByUser(_ context.Context, userID string, page model.Page) ([]model.Share, int, error) {
	return r.list(func(s model.Share) bool { return s.ActorID == userID }, page)
}

func (r *shareRepository) list(match func(model.Share) bool, page model.Page) ([]model.Share, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.s.sortedShares(match)
	return paginate(matched, page), len(matched), nil
}

func (r *shareRepository) ListRecent(_ context.Context, after *model.FeedCursor, limit int) ([]model.Share, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.s.sortedShares(func(s model.Share) bool {
		if s.Audience != model.AudiencePublic {
			return false
		}
		return after == nil || after.Older(s.CreatedAt, s.ID)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// sortedShares returns matching shares newest first.
func (s *Store) sortedShares(match func(model.Share) bool) []model.Share {
	var matched []model.Share
	for _, share := range s.shares {
		if match(share) {
			matched = append(matched, share)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched
}
