package model

import (
	"strconv"
	"strings"
	"time"
)

// Audience controls who can see a share.
type Audience string

const (
	AudiencePublic  Audience = "Public"
	AudienceFriends Audience = "Friends"
	AudiencePrivate Audience = "Private"
)

// ParseAudience normalizes raw case-insensitively. Empty input means Public.
func ParseAudience(raw string) (Audience, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "public":
		return AudiencePublic, nil
	case "friends":
		return AudienceFriends, nil
	case "private":
		return AudiencePrivate, nil
	}
	return "", ErrInvalidAudience
}

// Share is a user's re-post of another post.
type Share struct {
	ID             string    `db:"id" json:"id"`
	ActorID        string    `db:"actor_id" json:"actorId"`
	OriginalPostID string    `db:"original_post_id" json:"originalPostId"`
	Caption        *string   `db:"caption" json:"shareCaption"`
	Audience       Audience  `db:"audience" json:"audience"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	// Joined fields
	Actor        *UserSummary `json:"actor,omitempty"`
	OriginalPost *Post        `json:"originalPost,omitempty"`
}

// CreateShareRequest is the request body for sharing a post.
type CreateShareRequest struct {
	Caption  *string `json:"shareCaption"`
	Audience string  `json:"audience"`
}

// ShareUpdate selects the fields a repeated share overwrites. Unselected
// fields keep their stored value; a new share takes them as given.
type ShareUpdate struct {
	Caption  bool
	Audience bool
}

// FeedCursor is the position of the last share of a feed page. The feed
// is ordered by (CreatedAt, ShareID) descending, so shares created in the
// same instant still page deterministically.
type FeedCursor struct {
	CreatedAt time.Time
	ShareID   string
}

// ParseFeedCursor decodes "shareId:unixMicros".
func ParseFeedCursor(raw string) (FeedCursor, error) {
	i := strings.LastIndex(raw, ":")
	if i <= 0 || i == len(raw)-1 {
		return FeedCursor{}, ErrInvalidCursor
	}
	us, err := strconv.ParseInt(raw[i+1:], 10, 64)
	if err != nil || us < 0 {
		return FeedCursor{}, ErrInvalidCursor
	}
	return FeedCursor{CreatedAt: time.UnixMicro(us).UTC(), ShareID: raw[:i]}, nil
}

// String encodes the cursor. Microseconds match the precision Postgres
// stores, so the cursor names the row exactly.
func (c FeedCursor) String() string {
	return c.ShareID + ":" + strconv.FormatInt(c.CreatedAt.UnixMicro(), 10)
}

// Older reports whether the share at (createdAt, shareID) sorts below the
// cursor, i.e. belongs to a later page.
func (c FeedCursor) Older(createdAt time.Time, shareID string) bool {
	at, cur := createdAt.UnixMicro(), c.CreatedAt.UnixMicro()
	if at != cur {
		return at < cur
	}
	return shareID < c.ShareID
}

// FeedResponse is one page of the share feed.
type FeedResponse struct {
	Shares     []Share `json:"shares"`
	NextCursor *string `json:"nextCursor,omitempty"`
	HasMore    bool    `json:"hasMore"`
}

const MaxShareCaptionLength = 2200

// Share errors
var (
	ErrShareNotFound   = NewError(KindNotFound, "share not found")
	ErrNotShareOwner   = NewError(KindAuthorization, "not the owner of this share")
	ErrCaptionTooLong  = NewError(KindValidation, "share caption too long")
	ErrInvalidAudience = NewError(KindValidation, "invalid audience")
	ErrInvalidCursor   = NewError(KindValidation, "invalid feed cursor")
)
