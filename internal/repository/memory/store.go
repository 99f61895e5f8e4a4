// Package memory is an in-process implementation of every ledger
// repository. It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"sync"
	"time"

	"engagement/internal/model"
	"engagement/internal/repository"
)

type reactionKey struct {
	actorID  string
	targetID string
	kind     model.TargetKind
}

type likeKey struct {
	actorID string
	postID  string
}

// Store holds all rows behind one lock so that multi-row operations
// (toggle, cascade delete) are atomic like their SQL counterparts.
type Store struct {
	mu        sync.RWMutex
	users     map[string]model.User
	posts     map[string]model.Post
	reactions map[reactionKey]model.Reaction
	likes     map[likeKey]model.Like
	shares    map[string]model.Share
	comments  map[string]model.Comment

	last  time.Time
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]model.User),
		posts:     make(map[string]model.Post),
		reactions: make(map[reactionKey]model.Reaction),
		likes:     make(map[likeKey]model.Like),
		shares:    make(map[string]model.Share),
		comments:  make(map[string]model.Comment),
	}
}

// Repositories returns repository adapters sharing this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:     &userRepository{s},
		Posts:     &postRepository{s},
		Reactions: &reactionRepository{s},
		Likes:     &likeRepository{s},
		Shares:    &shareRepository{s},
		Comments:  &commentRepository{s},
	}
}

// SetClock replaces the wall clock. Timestamps then come from clock at
// microsecond precision without the tie-breaking bump, so rows can share an
// instant the way they can in Postgres.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// now returns a strictly increasing millisecond timestamp so rows written
// in sequence keep their insertion order. Callers hold the write lock.
func (s *Store) now() time.Time {
	if s.clock != nil {
		return s.clock().UTC().Truncate(time.Microsecond)
	}
	t := time.Now().UTC().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}

func (s *Store) targetExists(targetID string, kind model.TargetKind) bool {
	switch kind {
	case model.TargetPost:
		_, ok := s.posts[targetID]
		return ok
	case model.TargetShare:
		_, ok := s.shares[targetID]
		return ok
	}
	return false
}

func (s *Store) summary(userID string) model.UserSummary {
	if u, ok := s.users[userID]; ok {
		return u.Summary()
	}
	return model.UserSummary{ID: userID}
}

// paginate slices items to the requested page.
func paginate[T any](items []T, page model.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
