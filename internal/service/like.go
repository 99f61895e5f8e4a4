package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"engagement/internal/cache"
	"engagement/internal/metrics"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
)

// LikeService is the binary like ledger on posts.
type LikeService struct {
	repos    repository.Repositories
	counts   cache.Store
	countTTL time.Duration
	notifier *Notifier
	metrics  *metrics.Recorder
}

func NewLikeService(
	repos repository.Repositories,
	counts cache.Store,
	countTTL time.Duration,
	notifier *Notifier,
	recorder *metrics.Recorder,
) *LikeService {
	if counts == nil {
		counts = cache.NopStore{}
	}
	if countTTL <= 0 || countTTL > cache.StalenessWindow {
		countTTL = cache.StalenessWindow
	}
	return &LikeService{
		repos:    repos,
		counts:   counts,
		countTTL: countTTL,
		notifier: notifier,
		metrics:  recorder,
	}
}

// Toggle likes the post, or unlikes it when the actor already liked it.
// Returns the state and count as of the toggle's transaction.
func (s *LikeService) Toggle(ctx context.Context, actorID, postID string) (*model.ToggleLikeResult, []string, error) {
	liked, count, err := s.repos.Likes.Toggle(ctx, actorID, postID)
	s.metrics.Mutation(string(cache.MutationLikeToggle), string(model.TargetPost), err)
	if err != nil {
		return nil, nil, err
	}

	keys := cache.KeysFor(cache.MutationLikeToggle, cache.Scope{ActorID: actorID, TargetID: postID, TargetKind: model.TargetPost})
	s.notifier.Committed(ctx, queue.NewLikeToggledEvent(actorID, postID, liked, keys))

	log.Printf("[LikeService] Toggle OK: actor=%s post=%s liked=%t count=%d", actorID, postID, liked, count)
	return &model.ToggleLikeResult{Liked: liked, LikeCount: count}, keys, nil
}

// GetPostLikes lists the post's likers, newest like first.
func (s *LikeService) GetPostLikes(ctx context.Context, postID string, page model.Page) (*model.PageResult[model.Liker], error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	likers, total, err := s.repos.Likes.ListLikers(ctx, postID, page)
	if err != nil {
		return nil, fmt.Errorf("list likers: %w", err)
	}
	return model.NewPageResult(likers, page, total), nil
}

// CheckUserLiked reports whether actor liked the post, with the post's
// like count (cache-backed).
func (s *LikeService) CheckUserLiked(ctx context.Context, actorID, postID string) (*model.LikeStatus, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	liked, err := s.repos.Likes.Exists(ctx, actorID, postID)
	if err != nil {
		return nil, fmt.Errorf("check like: %w", err)
	}
	count, err := s.likeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &model.LikeStatus{Liked: liked, LikeCount: count}, nil
}

// GetUserLikedPosts lists the posts a user liked, newest like first.
func (s *LikeService) GetUserLikedPosts(ctx context.Context, userID string, page model.Page) (*model.PageResult[model.LikedPost], error) {
	posts, total, err := s.repos.Likes.ListLikedPosts(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list liked posts: %w", err)
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	authors := summaries(ctx, s.repos.Users, ids)
	for i := range posts {
		posts[i].Author = summaryOrID(authors, posts[i].AuthorID)
	}
	return model.NewPageResult(posts, page, total), nil
}

func (s *LikeService) likeCount(ctx context.Context, postID string) (int, error) {
	key := cache.LikeCountKey(postID)

	var count int
	found, err := s.counts.GetJSON(ctx, key, &count)
	if err != nil {
		log.Printf("[LikeService] Count cache read failed: key=%s err=%v", key, err)
	}
	s.metrics.CacheLookup(found)
	if found {
		return count, nil
	}

	count, err = s.repos.Likes.Count(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	if err := s.counts.SetJSON(ctx, key, count, s.countTTL); err != nil {
		log.Printf("[LikeService] Count cache write failed: key=%s err=%v", key, err)
	}
	return count, nil
}

func (s *LikeService) requirePost(ctx context.Context, postID string) error {
	ok, err := s.repos.Posts.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !ok {
		return model.ErrPostNotFound
	}
	return nil
}
