package model

import "time"

// Like is the binary specialization of a reaction: an actor either likes a
// post or does not.
type Like struct {
	ID        string    `db:"id" json:"id"`
	ActorID   string    `db:"actor_id" json:"actorId"`
	PostID    string    `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Liker is one row of a post's likers listing.
type Liker struct {
	User    UserSummary `json:"user"`
	LikedAt time.Time   `json:"likedAt"`
}

// ToggleLikeResult is the state after a toggle.
type ToggleLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// LikeStatus answers "has the caller liked this post".
type LikeStatus struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
