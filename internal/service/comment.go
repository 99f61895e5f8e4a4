package service

import (
	"context"
	"fmt"
	"log"

	"engagement/internal/cache"
	"engagement/internal/metrics"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
)

type CommentService struct {
	repos    repository.Repositories
	notifier *Notifier
	metrics  *metrics.Recorder
}

func NewCommentService(repos repository.Repositories, notifier *Notifier, recorder *metrics.Recorder) *CommentService {
	return &CommentService{
		repos:    repos,
		notifier: notifier,
		metrics:  recorder,
	}
}

// Add comments on a post or share. Content is trimmed before validation.
func (s *CommentService) Add(ctx context.Context, actorID, targetID string, kind model.TargetKind, rawContent string) (*model.Comment, []string, error) {
	if !kind.Valid() {
		return nil, nil, model.ErrInvalidTargetKind
	}
	content, err := model.NormalizeCommentContent(rawContent)
	if err != nil {
		return nil, nil, err
	}

	comment := &model.Comment{
		AuthorID:   actorID,
		TargetID:   targetID,
		TargetKind: kind,
		Content:    content,
	}
	err = s.repos.Comments.Create(ctx, comment)
	s.metrics.Mutation(string(cache.MutationCommentAdd), string(kind), err)
	if err != nil {
		return nil, nil, err
	}

	keys := s.committed(ctx, cache.MutationCommentAdd, queue.EventCommentAdded, comment)
	s.attachAuthor(ctx, comment)

	log.Printf("[CommentService] Add OK: actor=%s target=%s/%s comment=%s", actorID, kind, targetID, comment.ID)
	return comment, keys, nil
}

// Update edits the content of the actor's own comment.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, rawContent string) (*model.Comment, []string, error) {
	content, err := model.NormalizeCommentContent(rawContent)
	if err != nil {
		return nil, nil, err
	}

	comment, err := s.repos.Comments.Update(ctx, commentID, actorID, content)
	if err != nil {
		s.metrics.Mutation(string(cache.MutationCommentUpdate), "", err)
		return nil, nil, err
	}
	s.metrics.Mutation(string(cache.MutationCommentUpdate), string(comment.TargetKind), nil)

	keys := s.committed(ctx, cache.MutationCommentUpdate, queue.EventCommentUpdated, comment)
	s.attachAuthor(ctx, comment)

	log.Printf("[CommentService] Update OK: actor=%s comment=%s", actorID, commentID)
	return comment, keys, nil
}

// Delete removes the actor's own comment. Other users' comments are left
// untouched.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) ([]string, error) {
	comment, err := s.repos.Comments.Delete(ctx, commentID, actorID)
	if err != nil {
		s.metrics.Mutation(string(cache.MutationCommentDelete), "", err)
		return nil, err
	}
	s.metrics.Mutation(string(cache.MutationCommentDelete), string(comment.TargetKind), nil)

	keys := s.committed(ctx, cache.MutationCommentDelete, queue.EventCommentDeleted, comment)

	log.Printf("[CommentService] Delete OK: actor=%s comment=%s", actorID, commentID)
	return keys, nil
}

// List returns the target's comments oldest first.
func (s *CommentService) List(ctx context.Context, targetID string, kind model.TargetKind, page model.Page) (*model.PageResult[model.Comment], error) {
	if err := requireTarget(ctx, s.repos, targetID, kind); err != nil {
		return nil, err
	}

	comments, total, err := s.repos.Comments.List(ctx, targetID, kind, page)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return model.NewPageResult(comments, page, total), nil
}

func (s *CommentService) committed(ctx context.Context, mutation cache.Mutation, eventType string, comment *model.Comment) []string {
	scope := cache.Scope{
		ActorID:    comment.AuthorID,
		TargetID:   comment.TargetID,
		TargetKind: comment.TargetKind,
	}
	keys := cache.KeysFor(mutation, scope)
	s.notifier.Committed(ctx, queue.NewCommentEvent(eventType, comment, keys))
	return keys
}

func (s *CommentService) attachAuthor(ctx context.Context, comment *model.Comment) {
	users := summaries(ctx, s.repos.Users, []string{comment.AuthorID})
	comment.Author = summaryOrID(users, comment.AuthorID)
}
