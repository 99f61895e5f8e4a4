package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"engagement/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle runs "insert; on conflict delete" on the unique (actor, post) key.
// A concurrent toggle by the same actor blocks on the unique index until the
// first one commits, so two toggles always net out to no like.
func (r *likeRepository) Toggle(ctx context.Context, actorID, postID string) (bool, int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	liked := true
	var id string
	err = tx.GetContext(ctx, &id, `
		INSERT INTO likes (id, actor_id, post_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id, post_id) DO NOTHING
		RETURNING id
	`, uuid.NewString(), actorID, postID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM likes WHERE actor_id = $1 AND post_id = $2
		`, actorID, postID); err != nil {
			return false, 0, fmt.Errorf("delete like: %w", err)
		}
		liked = false
	case isForeignKeyViolation(err):
		return false, 0, model.ErrPostNotFound
	case err != nil:
		return false, 0, fmt.Errorf("insert like: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
		return false, 0, fmt.Errorf("count likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit transaction: %w", err)
	}
	return liked, count, nil
}

func (r *likeRepository) Exists(ctx context.Context, actorID, postID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE actor_id = $1 AND post_id = $2)
	`, actorID, postID)
	if err != nil {
		return false, fmt.Errorf("check like exists: %w", err)
	}
	return exists, nil
}

func (r *likeRepository) Count(ctx context.Context, postID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (r *likeRepository) ListLikers(ctx context.Context, postID string, page model.Page) ([]model.Liker, int, error) {
	total, err := r.Count(ctx, postID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT l.actor_id, l.created_at,
		       COALESCE(u.username, '') AS username, u.display_name, u.avatar_url
		FROM likes l
		LEFT JOIN users u ON u.id = l.actor_id
		WHERE l.post_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3
	`
	var rows []struct {
		ActorID     string    `db:"actor_id"`
		CreatedAt   time.Time `db:"created_at"`
		Username    string    `db:"username"`
		DisplayName *string   `db:"display_name"`
		AvatarURL   *string   `db:"avatar_url"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, postID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list likers: %w", err)
	}

	likers := make([]model.Liker, len(rows))
	for i, row := range rows {
		likers[i] = model.Liker{
			User: model.UserSummary{
				ID:          row.ActorID,
				Username:    row.Username,
				DisplayName: row.DisplayName,
				AvatarURL:   row.AvatarURL,
			},
			LikedAt: row.CreatedAt,
		}
	}
	return likers, total, nil
}

func (r *likeRepository) ListLikedPosts(ctx context.Context, userID string, page model.Page) ([]model.LikedPost, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM likes WHERE actor_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count liked posts: %w", err)
	}

	query := `
		SELECT p.id, p.author_id, p.content, p.created_at, l.created_at AS liked_at
		FROM likes l
		JOIN posts p ON p.id = l.post_id
		WHERE l.actor_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3
	`
	var posts []model.LikedPost
	if err := r.db.SelectContext(ctx, &posts, query, userID, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list liked posts: %w", err)
	}
	return posts, total, nil
}
