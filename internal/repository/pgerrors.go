package repository

import (
	"errors"

	"github.com/lib/pq"

	"engagement/internal/model"
)

// PostgreSQL error codes we branch on
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// targetTable maps a target kind to the table that owns its rows.
// The result is interpolated into SQL, so only fixed names are returned.
func targetTable(kind model.TargetKind) (string, error) {
	switch kind {
	case model.TargetPost:
		return "posts", nil
	case model.TargetShare:
		return "shares", nil
	}
	return "", model.ErrInvalidTargetKind
}
