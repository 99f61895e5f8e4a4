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

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Upsert writes the reaction in one statement. The EXISTS guard takes a key
// share lock on the target so a concurrent cascade delete of a share cannot
// leave an orphan reaction behind.
func (r *reactionRepository) Upsert(ctx context.Context, actorID, targetID string, kind model.TargetKind, reactionType model.ReactionType) (*model.Reaction, error) {
	table, err := targetTable(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		INSERT INTO reactions (id, actor_id, target_id, target_kind, type)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM %s WHERE id = $3 FOR KEY SHARE)
		ON CONFLICT (actor_id, target_id, target_kind)
		DO UPDATE SET type = EXCLUDED.type, updated_at = NOW()
		RETURNING id, actor_id, target_id, target_kind, type, created_at, updated_at
	`, table)

	var reaction model.Reaction
	err = r.db.GetContext(ctx, &reaction, query, uuid.NewString(), actorID, targetID, string(kind), string(reactionType))
	if err == sql.ErrNoRows {
		return nil, model.ErrTargetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert reaction: %w", err)
	}
	return &reaction, nil
}

func (r *reactionRepository) Delete(ctx context.Context, actorID, targetID string, kind model.TargetKind) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM reactions
		WHERE actor_id = $1 AND target_id = $2 AND target_kind = $3
	`, actorID, targetID, string(kind))
	if err != nil {
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete reaction rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *reactionRepository) GetByActor(ctx context.Context, actorID, targetID string, kind model.TargetKind) (*model.Reaction, error) {
	query := `
		SELECT id, actor_id, target_id, target_kind, type, created_at, updated_at
		FROM reactions
		WHERE actor_id = $1 AND target_id = $2 AND target_kind = $3
	`
	var reaction model.Reaction
	err := r.db.GetContext(ctx, &reaction, query, actorID, targetID, string(kind))
	if err == sql.ErrNoRows {
		return nil, model.ErrReactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reaction: %w", err)
	}
	// Rows written before the casing fix may still hold "HEART" and friends
	if t, err := model.ParseReactionType(string(reaction.Type)); err == nil {
		reaction.Type = t
	}
	return &reaction, nil
}

func (r *reactionRepository) CountByType(ctx context.Context, targetID string, kind model.TargetKind) (model.ReactionCounts, error) {
	query := `
		SELECT type, COUNT(*) AS n
		FROM reactions
		WHERE target_id = $1 AND target_kind = $2
		GROUP BY type
	`
	var rows []struct {
		Type string `db:"type"`
		N    int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, targetID, string(kind)); err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}

	counts := model.NewReactionCounts()
	for _, row := range rows {
		counts.Add(row.Type, row.N)
	}
	return counts, nil
}

func (r *reactionRepository) List(ctx context.Context, targetID string, kind model.TargetKind, filter *model.ReactionType, page model.Page) ([]model.Reactor, int, error) {
	var filterArg *string
	if filter != nil {
		f := string(*filter)
		filterArg = &f
	}

	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*)
		FROM reactions
		WHERE target_id = $1 AND target_kind = $2
		  AND ($3::text IS NULL OR UPPER(type) = UPPER($3))
	`, targetID, string(kind), filterArg)
	if err != nil {
		return nil, 0, fmt.Errorf("count reactors: %w", err)
	}

	query := `
		SELECT r.type, r.updated_at, r.actor_id,
		       COALESCE(u.username, '') AS username, u.display_name, u.avatar_url
		FROM reactions r
		LEFT JOIN users u ON u.id = r.actor_id
		WHERE r.target_id = $1 AND r.target_kind = $2
		  AND ($3::text IS NULL OR UPPER(r.type) = UPPER($3))
		ORDER BY r.updated_at DESC, r.id DESC
		LIMIT $4 OFFSET $5
	`
	type reactorRow struct {
		Type        string    `db:"type"`
		UpdatedAt   time.Time `db:"updated_at"`
		ActorID     string    `db:"actor_id"`
		Username    string    `db:"username"`
		DisplayName *string   `db:"display_name"`
		AvatarURL   *string   `db:"avatar_url"`
	}
	var rows []reactorRow
	err = r.db.SelectContext(ctx, &rows, query, targetID, string(kind), filterArg, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reactors: %w", err)
	}

	reactors := make([]model.Reactor, 0, len(rows))
	for _, row := range rows {
		t, err := model.ParseReactionType(row.Type)
		if err != nil {
			continue
		}
		reactors = append(reactors, model.Reactor{
			User: model.UserSummary{
				ID:          row.ActorID,
				Username:    row.Username,
				DisplayName: row.DisplayName,
				AvatarURL:   row.AvatarURL,
			},
			Type:      t,
			ReactedAt: row.UpdatedAt,
		})
	}
	return reactors, total, nil
}
