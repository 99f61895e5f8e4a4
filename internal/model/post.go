package model

import "time"

// Post is the minimal post row this service needs: enough to check that a
// target exists and to show what a share points at.
type Post struct {
	ID        string    `db:"id" json:"id"`
	AuthorID  string    `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Joined fields (not in posts table)
	Author *UserSummary `json:"author,omitempty"`
}

// LikedPost is one entry of a user's liked-posts listing.
type LikedPost struct {
	Post
	LikedAt time.Time `db:"liked_at" json:"likedAt"`
}

// Post errors
var (
	ErrPostNotFound = NewError(KindNotFound, "post not found")
)
