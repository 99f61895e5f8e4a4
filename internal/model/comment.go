package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Comment is a comment on a post or a share.
type Comment struct {
	ID         string       `db:"id" json:"id"`
	AuthorID   string       `db:"author_id" json:"authorId"`
	TargetID   string       `db:"target_id" json:"targetId"`
	TargetKind TargetKind   `db:"target_kind" json:"targetKind"`
	Content    string       `db:"content" json:"content"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
	Author     *UserSummary `json:"author,omitempty"` // Joined field
}

// CommentRequest is the request body for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// NormalizeCommentContent trims content and checks its length in runes.
func NormalizeCommentContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

// Comment errors
var (
	ErrCommentNotFound = NewError(KindNotFound, "comment not found")
	ErrNotCommentOwner = NewError(KindAuthorization, "not the author of this comment")
	ErrEmptyContent    = NewError(KindValidation, "comment content is required")
	ErrContentTooLong  = NewError(KindValidation, "comment content too long")
)
