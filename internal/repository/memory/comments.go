package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"engagement/internal/model"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !c.TargetKind.Valid() {
		return model.ErrInvalidTargetKind
	}
	if !r.s.targetExists(c.TargetID, c.TargetKind) {
		return model.ErrTargetNotFound
	}

	now := r.s.now()
	stored := model.Comment{
		ID:         uuid.NewString(),
		AuthorID:   c.AuthorID,
		TargetID:   c.TargetID,
		TargetKind: c.TargetKind,
		Content:    c.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.s.comments[stored.ID] = stored
	*c = stored
	return nil
}

func (r *commentRepository) Update(_ context.Context, commentID, authorID, content string) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if c.AuthorID != authorID {
		return nil, model.ErrNotCommentOwner
	}
	c.Content = content
	c.UpdatedAt = r.s.now()
	r.s.comments[commentID] = c
	return &c, nil
}

func (r *commentRepository) Delete(_ context.Context, commentID, authorID string) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if c.AuthorID != authorID {
		return nil, model.ErrNotCommentOwner
	}
	delete(r.s.comments, commentID)
	return &c, nil
}

func (r *commentRepository) GetByID(_ context.Context, commentID string) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	return &c, nil
}

func (r *commentRepository) List(_ context.Context, targetID string, kind model.TargetKind, page model.Page) ([]model.Comment, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Comment
	for _, c := range r.s.comments {
		if c.TargetID == targetID && c.TargetKind == kind {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	pageRows := paginate(matched, page)
	comments := make([]model.Comment, len(pageRows))
	for i, c := range pageRows {
		author := r.s.summary(c.AuthorID)
		c.Author = &author
		comments[i] = c
	}
	return comments, len(matched), nil
}

// CommentCount returns how many comments target has.
func (s *Store) CommentCount(targetID string, kind model.TargetKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.comments {
		if c.TargetID == targetID && c.TargetKind == kind {
			n++
		}
	}
	return n
}

// ReactionCount returns how many reactions target has.
func (s *Store) ReactionCount(targetID string, kind model.TargetKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key := range s.reactions {
		if key.targetID == targetID && key.kind == kind {
			n++
		}
	}
	return n
}
