package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"engagement/internal/model"
)

type likeRepository struct {
	s *Store
}

func (r *likeRepository) Toggle(_ context.Context, actorID, postID string) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return false, 0, model.ErrPostNotFound
	}

	key := likeKey{actorID: actorID, postID: postID}
	liked := true
	if _, ok := r.s.likes[key]; ok {
		delete(r.s.likes, key)
		liked = false
	} else {
		r.s.likes[key] = model.Like{
			ID:        uuid.NewString(),
			ActorID:   actorID,
			PostID:    postID,
			CreatedAt: r.s.now(),
		}
	}
	return liked, r.s.countLikes(postID), nil
}

func (s *Store) countLikes(postID string) int {
	n := 0
	for key := range s.likes {
		if key.postID == postID {
			n++
		}
	}
	return n
}

func (r *likeRepository) Exists(_ context.Context, actorID, postID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.likes[likeKey{actorID: actorID, postID: postID}]
	return ok, nil
}

func (r *likeRepository) Count(_ context.Context, postID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.countLikes(postID), nil
}

// newestLikesFirst orders likes by creation time, newest first.
func newestLikesFirst(likes []model.Like) {
	sort.Slice(likes, func(i, j int) bool {
		if !likes[i].CreatedAt.Equal(likes[j].CreatedAt) {
			return likes[i].CreatedAt.After(likes[j].CreatedAt)
		}
		return likes[i].ID > likes[j].ID
	})
}

func (r *likeRepository) ListLikers(_ context.Context, postID string, page model.Page) ([]model.Liker, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Like
	for key, like := range r.s.likes {
		if key.postID == postID {
			matched = append(matched, like)
		}
	}
	newestLikesFirst(matched)

	pageRows := paginate(matched, page)
	likers := make([]model.Liker, len(pageRows))
	for i, like := range pageRows {
		likers[i] = model.Liker{User: r.s.summary(like.ActorID), LikedAt: like.CreatedAt}
	}
	return likers, len(matched), nil
}

func (r *likeRepository) ListLikedPosts(_ context.Context, userID string, page model.Page) ([]model.LikedPost, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []model.Like
	for key, like := range r.s.likes {
		if key.actorID == userID {
			matched = append(matched, like)
		}
	}
	newestLikesFirst(matched)

	pageRows := paginate(matched, page)
	posts := make([]model.LikedPost, 0, len(pageRows))
	for _, like := range pageRows {
		post, ok := r.s.posts[like.PostID]
		if !ok {
			continue
		}
		posts = append(posts, model.LikedPost{Post: post, LikedAt: like.CreatedAt})
	}
	return posts, len(matched), nil
}
