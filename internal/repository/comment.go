package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"engagement/internal/model"
)

const commentColumns = `id, author_id, target_id, target_kind, content, created_at, updated_at`

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment guarded by the target's existence, like
// reaction upserts.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	table, err := targetTable(c.TargetKind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO comments (id, author_id, target_id, target_kind, content)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM %s WHERE id = $3 FOR KEY SHARE)
		RETURNING `+commentColumns, table)

	var created model.Comment
	err = r.db.GetContext(ctx, &created, query, uuid.NewString(), c.AuthorID, c.TargetID, string(c.TargetKind), c.Content)
	if err == sql.ErrNoRows {
		return model.ErrTargetNotFound
	}
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	*c = created
	return nil
}

// Update updates a comment's content. Only the author can update.
func (r *commentRepository) Update(ctx context.Context, commentID, authorID, content string) (*model.Comment, error) {
	query := `
		UPDATE comments
		SET content = $1, updated_at = NOW()
		WHERE id = $2 AND author_id = $3
		RETURNING ` + commentColumns
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, content, commentID, authorID)
	if err == sql.ErrNoRows {
		// Check if comment exists but belongs to a different user
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID); err != nil {
			return nil, fmt.Errorf("check comment exists: %w", err)
		}
		if exists {
			return nil, model.ErrNotCommentOwner
		}
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

// Delete removes a comment. Only the author can delete; the ownership check
// and the delete share one transaction.
func (r *commentRepository) Delete(ctx context.Context, commentID, authorID string) (*model.Comment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var comment model.Comment
	err = tx.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	if comment.AuthorID != authorID {
		return nil, model.ErrNotCommentOwner
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &comment, nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// List returns one page of comments on a target with their authors.
func (r *commentRepository) List(ctx context.Context, targetID string, kind model.TargetKind, page model.Page) ([]model.Comment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM comments WHERE target_id = $1 AND target_kind = $2
	`, targetID, string(kind))
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := `
		SELECT c.id, c.author_id, c.target_id, c.target_kind, c.content, c.created_at, c.updated_at,
		       COALESCE(u.username, '') AS username, u.display_name, u.avatar_url
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.target_id = $1 AND c.target_kind = $2
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $3 OFFSET $4
	`
	type commentRow struct {
		ID          string    `db:"id"`
		AuthorID    string    `db:"author_id"`
		TargetID    string    `db:"target_id"`
		TargetKind  string    `db:"target_kind"`
		Content     string    `db:"content"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
		Username    string    `db:"username"`
		DisplayName *string   `db:"display_name"`
		AvatarURL   *string   `db:"avatar_url"`
	}
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, targetID, string(kind), page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:         row.ID,
			AuthorID:   row.AuthorID,
			TargetID:   row.TargetID,
			TargetKind: model.TargetKind(row.TargetKind),
			Content:    row.Content,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  row.UpdatedAt,
			Author: &model.UserSummary{
				ID:          row.AuthorID,
				Username:    row.Username,
				DisplayName: row.DisplayName,
				AvatarURL:   row.AvatarURL,
			},
		}
	}
	return comments, total, nil
}
