package repository

import (
	"context"

	"engagement/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	// GetSummaries returns the public identity of every known user in ids.
	// Unknown ids are absent from the map.
	GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type ReactionRepository interface {
	// Upsert stores the actor's reaction on the target, overwriting the type
	// of an existing one. Returns model.ErrTargetNotFound when the target is
	// gone at write time.
	Upsert(ctx context.Context, actorID, targetID string, kind model.TargetKind, reactionType model.ReactionType) (*model.Reaction, error)
	// Delete removes the actor's reaction. Reports whether a row existed.
	Delete(ctx context.Context, actorID, targetID string, kind model.TargetKind) (bool, error)
	GetByActor(ctx context.Context, actorID, targetID string, kind model.TargetKind) (*model.Reaction, error)
	// CountByType returns zero-filled per-type counts with legacy casing
	// merged into the canonical buckets.
	CountByType(ctx context.Context, targetID string, kind model.TargetKind) (model.ReactionCounts, error)
	// List returns reactors newest first plus the total matching rows.
	List(ctx context.Context, targetID string, kind model.TargetKind, filter *model.ReactionType, page model.Page) ([]model.Reactor, int, error)
}

type LikeRepository interface {
	// Toggle inserts the like or, when it already exists, deletes it, and
	// returns the resulting state and count in the same transaction.
	Toggle(ctx context.Context, actorID, postID string) (liked bool, count int, err error)
	Exists(ctx context.Context, actorID, postID string) (bool, error)
	Count(ctx context.Context, postID string) (int, error)
	ListLikers(ctx context.Context, postID string, page model.Page) ([]model.Liker, int, error)
	ListLikedPosts(ctx context.Context, userID string, page model.Page) ([]model.LikedPost, int, error)
}

type ShareRepository interface {
	// Upsert creates the share or overwrites the fields selected by update
	// on the actor's existing share of the same post. Fills share in place.
	Upsert(ctx context.Context, share *model.Share, update model.ShareUpdate) (created bool, err error)
	GetByID(ctx context.Context, id string) (*model.Share, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Share, error)
	Exists(ctx context.Context, id string) (bool, error)
	// DeleteCascade removes the share together with its reactions and
	// comments in one transaction. Only the owner may delete.
	DeleteCascade(ctx context.Context, shareID, actorID string) (*model.Share, error)
	ListByPost(ctx context.Context, postID string, page model.Page) ([]model.Share, int, error)
	ListByUser(ctx context.Context, userID string, page model.Page) ([]model.Share, int, error)
	// ListRecent returns public shares ordered by (created_at, id)
	// descending, starting strictly below after (or at the newest when nil).
	ListRecent(ctx context.Context, after *model.FeedCursor, limit int) ([]model.Share, error)
}

type CommentRepository interface {
	// Create inserts the comment. Returns model.ErrTargetNotFound when the
	// target is gone at write time.
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, commentID, authorID, content string) (*model.Comment, error)
	Delete(ctx context.Context, commentID, authorID string) (*model.Comment, error)
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	// List returns comments oldest first, ties broken by id.
	List(ctx context.Context, targetID string, kind model.TargetKind, page model.Page) ([]model.Comment, int, error)
}

// Repositories bundles one implementation of every ledger.
type Repositories struct {
	Users     UserRepository
	Posts     PostRepository
	Reactions ReactionRepository
	Likes     LikeRepository
	Shares    ShareRepository
	Comments  CommentRepository
}
