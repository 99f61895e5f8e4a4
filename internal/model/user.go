package model

import "time"

// User represents a user in the system
type User struct {
	ID          string    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName *string   `db:"display_name" json:"displayName"`
	AvatarURL   *string   `db:"avatar_url" json:"avatarUrl"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is the public identity shown next to reactions, likes,
// shares and comments.
type UserSummary struct {
	ID          string  `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"displayName"`
	AvatarURL   *string `db:"avatar_url" json:"avatarUrl"`
}

// Summary returns the public identity of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = NewError(KindNotFound, "user not found")
)
