package memory

import (
	"context"

	"github.com/google/uuid"

	"engagement/internal/model"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := r.s.users[u.ID]; ok {
		return model.ErrConflict
	}
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return model.ErrConflict
		}
	}
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepository) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.users[id]
	return ok, nil
}

func (r *userRepository) GetSummaries(_ context.Context, ids []string) (map[string]model.UserSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]model.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			result[id] = u.Summary()
		}
	}
	return result, nil
}

type postRepository struct {
	s *Store
}

func (r *postRepository) Create(_ context.Context, p *model.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := r.s.posts[p.ID]; ok {
		return model.ErrConflict
	}
	p.CreatedAt = r.s.now()
	stored := *p
	stored.Author = nil
	r.s.posts[p.ID] = stored
	return nil
}

func (r *postRepository) GetByID(_ context.Context, id string) (*model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return &p, nil
}

func (r *postRepository) GetByIDs(_ context.Context, ids []string) (map[string]model.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]model.Post, len(ids))
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (r *postRepository) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.posts[id]
	return ok, nil
}
