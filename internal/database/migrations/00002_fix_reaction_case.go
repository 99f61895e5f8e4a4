package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"

	"engagement/internal/model"
)

func init() {
	goose.AddMigrationContext(upFixReactionCase, downFixReactionCase)
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// FixReactionCase rewrites reaction labels stored in non-canonical casing
// ("HEART", "heart") to their canonical form and returns how many rows
// changed. Unknown labels are left alone. Safe to run repeatedly.
func FixReactionCase(ctx context.Context, db Execer) (int64, error) {
	var total int64
	for _, t := range model.ReactionTypes {
		res, err := db.ExecContext(ctx, `
			UPDATE reactions
			SET type = $1
			WHERE UPPER(type) = UPPER($1) AND type <> $1
		`, string(t))
		if err != nil {
			return total, fmt.Errorf("normalize %s reactions: %w", t, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("normalize %s reactions: %w", t, err)
		}
		total += n
	}
	return total, nil
}

func upFixReactionCase(ctx context.Context, tx *sql.Tx) error {
	n, err := FixReactionCase(ctx, tx)
	if err != nil {
		return err
	}
	log.Printf("[Migrate] fix_reaction_case: normalized=%d", n)
	return nil
}

// Canonical labels are valid input for the old code too, so there is
// nothing to undo.
func downFixReactionCase(ctx context.Context, tx *sql.Tx) error {
	return nil
}
