package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"engagement/internal/model"
)

const shareColumns = `id, actor_id, original_post_id, caption, audience, created_at, updated_at`

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Upsert(ctx context.Context, s *model.Share, update model.ShareUpdate) (bool, error) {
	query := `
		INSERT INTO shares (id, actor_id, original_post_id, caption, audience)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (actor_id, original_post_id)
		DO UPDATE SET
			caption    = CASE WHEN $6::boolean THEN EXCLUDED.caption ELSE shares.caption END,
			audience   = CASE WHEN $7::boolean THEN EXCLUDED.audience ELSE shares.audience END,
			updated_at = NOW()
		RETURNING ` + shareColumns + `, (xmax = 0) AS inserted
	`
	var row struct {
		model.Share
		Inserted bool `db:"inserted"`
	}
	err := r.db.GetContext(ctx, &row, query, uuid.NewString(), s.ActorID, s.OriginalPostID, s.Caption, string(s.Audience),
		update.Caption, update.Audience)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, model.ErrPostNotFound
		}
		return false, fmt.Errorf("upsert share: %w", err)
	}
	*s = row.Share
	return row.Inserted, nil
}

func (r *shareRepository) GetByID(ctx context.Context, id string) (*model.Share, error) {
	var s model.Share
	err := r.db.GetContext(ctx, &s, `SELECT `+shareColumns+` FROM shares WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return &s, nil
}

func (r *shareRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Share, error) {
	result := make(map[string]model.Share, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var shares []model.Share
	err := r.db.SelectContext(ctx, &shares, `SELECT `+shareColumns+` FROM shares WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get shares by ids: %w", err)
	}
	for _, s := range shares {
		result[s.ID] = s
	}
	return result, nil
}

func (r *shareRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM shares WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check share exists: %w", err)
	}
	return exists, nil
}

// DeleteCascade locks the share row first. Reaction and comment writes on
// the share take a key share lock on the same row, so they either land
// before the cascade and get deleted with it, or see the share gone.
func (r *shareRepository) DeleteCascade(ctx context.Context, shareID, actorID string) (*model.Share, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var s model.Share
	err = tx.GetContext(ctx, &s, `SELECT `+shareColumns+` FROM shares WHERE id = $1 FOR UPDATE`, shareID)
	if err == sql.ErrNoRows {
		return nil, model.ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock share: %w", err)
	}
	if s.ActorID != actorID {
		return nil, model.ErrNotShareOwner
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM reactions WHERE target_kind = $1 AND target_id = $2
	`, string(model.TargetShare), shareID); err != nil {
		return nil, fmt.Errorf("delete share reactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM comments WHERE target_kind = $1 AND target_id = $2
	`, string(model.TargetShare), shareID); err != nil {
		return nil, fmt.Errorf("delete share comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, shareID); err != nil {
		return nil, fmt.Errorf("delete share: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &s, nil
}

func (r *shareRepository) ListByPost(ctx context.Context, postID string, page model.Page) ([]model.Share, int, error) {
	return r.list(ctx, "original_post_id", postID, page)
}

func (r *shareRepository) ListByUser(ctx context.Context, userID string, page model.Page) ([]model.Share, int, error) {
	return r.list(ctx, "actor_id", userID, page)
}

// list pages through shares filtered on one column, newest first.
// column is always a fixed name from this file.
func (r *shareRepository) list(ctx context.Context, column, value string, page model.Page) ([]model.Share, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM shares WHERE `+column+` = $1`, value); err != nil {
		return nil, 0, fmt.Errorf("count shares: %w", err)
	}

	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE ` + column + ` = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var shares []model.Share
	if err := r.db.SelectContext(ctx, &shares, query, value, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list shares: %w", err)
	}
	return shares, total, nil
}

// ListRecent pages with a row comparison on (created_at, id). Ids compare
// bytewise so the order matches the Redis feed and the cursor.
func (r *shareRepository) ListRecent(ctx context.Context, after *model.FeedCursor, limit int) ([]model.Share, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM shares
		WHERE audience = $1
		  AND ($2::timestamptz IS NULL OR (created_at, id COLLATE "C") < ($2::timestamptz, $3::text))
		ORDER BY created_at DESC, id COLLATE "C" DESC
		LIMIT $4
	`
	var afterAt *time.Time
	var afterID string
	if after != nil {
		at := after.CreatedAt
		afterAt, afterID = &at, after.ShareID
	}

	var shares []model.Share
	if err := r.db.SelectContext(ctx, &shares, query, string(model.AudiencePublic), afterAt, afterID, limit); err != nil {
		return nil, fmt.Errorf("list recent shares: %w", err)
	}
	return shares, nil
}
