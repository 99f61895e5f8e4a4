package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"engagement/internal/model"
)

type reactionRepository struct {
	s *Store
}

func (r *reactionRepository) Upsert(_ context.Context, actorID, targetID string, kind model.TargetKind, reactionType model.ReactionType) (*model.Reaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.targetExists(targetID, kind) {
		return nil, model.ErrTargetNotFound
	}

	key := reactionKey{actorID: actorID, targetID: targetID, kind: kind}
	now := r.s.now()
	reaction, ok := r.s.reactions[key]
	if !ok {
		reaction = model.Reaction{
			ID:         uuid.NewString(),
			ActorID:    actorID,
			TargetID:   targetID,
			TargetKind: kind,
			CreatedAt:  now,
		}
	}
	reaction.Type = reactionType
	reaction.UpdatedAt = now
	r.s.reactions[key] = reaction
	return &reaction, nil
}

func (r *reactionRepository) Delete(_ context.Context, actorID, targetID string, kind model.TargetKind) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := reactionKey{actorID: actorID, targetID: targetID, kind: kind}
	if _, ok := r.s.reactions[key]; !ok {
		return false, nil
	}
	delete(r.s.reactions, key)
	return true, nil
}

func (r *reactionRepository) GetByActor(_ context.Context, actorID, targetID string, kind model.TargetKind) (*model.Reaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reaction, ok := r.s.reactions[reactionKey{actorID: actorID, targetID: targetID, kind: kind}]
	if !ok {
		return nil, model.ErrReactionNotFound
	}
	if t, err := model.ParseReactionType(string(reaction.Type)); err == nil {
		reaction.Type = t
	}
	return &reaction, nil
}

func (r *reactionRepository) CountByType(_ context.Context, targetID string, kind model.TargetKind) (model.ReactionCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := model.NewReactionCounts()
	for key, reaction := range r.s.reactions {
		if key.targetID == targetID && key.kind == kind {
			counts.Add(string(reaction.Type), 1)
		}
	}
	return counts, nil
}

func (r *reactionRepository) List(_ context.Context, targetID string, kind model.TargetKind, filter *model.ReactionType, page model.Page) ([]model.Reactor, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Reaction
	for key, reaction := range r.s.reactions {
		if key.targetID != targetID || key.kind != kind {
			continue
		}
		if filter != nil && !strings.EqualFold(string(reaction.Type), string(*filter)) {
			continue
		}
		matched = append(matched, reaction)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	pageRows := paginate(matched, page)
	reactors := make([]model.Reactor, 0, len(pageRows))
	for _, reaction := range pageRows {
		t, err := model.ParseReactionType(string(reaction.Type))
		if err != nil {
			continue
		}
		reactors = append(reactors, model.Reactor{
			User:      r.s.summary(reaction.ActorID),
			Type:      t,
			ReactedAt: reaction.UpdatedAt,
		})
	}
	return reactors, len(matched), nil
}

// PutRawReaction stores a reaction with its type label as given, bypassing
// normalization. It reproduces rows written before labels were canonical.
func (s *Store) PutRawReaction(actorID, targetID string, kind model.TargetKind, rawType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.reactions[reactionKey{actorID: actorID, targetID: targetID, kind: kind}] = model.Reaction{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		TargetID:   targetID,
		TargetKind: kind,
		Type:       model.ReactionType(rawType),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// RawReactionType returns the stored label of a reaction, or "" when absent.
func (s *Store) RawReactionType(actorID, targetID string, kind model.TargetKind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return string(s.reactions[reactionKey{actorID: actorID, targetID: targetID, kind: kind}].Type)
}
