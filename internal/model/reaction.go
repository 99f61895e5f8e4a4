package model

import (
	"strings"
	"time"
)

// ReactionType is the canonical label of a reaction.
type ReactionType string

const (
	ReactionLike     ReactionType = "Like"
	ReactionHeart    ReactionType = "Heart"
	ReactionLaughing ReactionType = "Laughing"
	ReactionWow      ReactionType = "Wow"
	ReactionSad      ReactionType = "Sad"
	ReactionAngry    ReactionType = "Angry"
)

// ReactionTypes lists every canonical reaction type in display order.
var ReactionTypes = []ReactionType{
	ReactionLike,
	ReactionHeart,
	ReactionLaughing,
	ReactionWow,
	ReactionSad,
	ReactionAngry,
}

// reactionLookup maps the upper-cased token to its canonical label.
var reactionLookup = func() map[string]ReactionType {
	m := make(map[string]ReactionType, len(ReactionTypes))
	for _, t := range ReactionTypes {
		m[strings.ToUpper(string(t))] = t
	}
	return m
}()

// ParseReactionType normalizes raw ("HEART", "heart", "Heart") to its
// canonical label.
func ParseReactionType(raw string) (ReactionType, error) {
	t, ok := reactionLookup[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidReactionType
	}
	return t, nil
}

// Reaction is a single actor's reaction to a post or share.
type Reaction struct {
	ID         string       `db:"id" json:"id"`
	ActorID    string       `db:"actor_id" json:"actorId"`
	TargetID   string       `db:"target_id" json:"targetId"`
	TargetKind TargetKind   `db:"target_kind" json:"targetKind"`
	Type       ReactionType `db:"type" json:"type"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}

// Reactor is one row of a reaction listing: who reacted and how.
type Reactor struct {
	User      UserSummary  `json:"user"`
	Type      ReactionType `json:"type"`
	ReactedAt time.Time    `json:"reactedAt"`
}

// ReactionCounts holds the per-type totals for one target.
type ReactionCounts map[ReactionType]int

// NewReactionCounts returns counts with every type present at zero.
func NewReactionCounts() ReactionCounts {
	c := make(ReactionCounts, len(ReactionTypes))
	for _, t := range ReactionTypes {
		c[t] = 0
	}
	return c
}

// Add merges n reactions stored under raw into the canonical bucket.
// Unknown labels are dropped.
func (c ReactionCounts) Add(raw string, n int) {
	t, err := ParseReactionType(raw)
	if err != nil {
		return
	}
	c[t] += n
}

// Total is the sum over all types.
func (c ReactionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// SetReactionRequest is the request body for setting a reaction.
type SetReactionRequest struct {
	ReactionType string `json:"reactionType"`
}

// ReactionSummary is the aggregate view of a target's reactions.
type ReactionSummary struct {
	Counts ReactionCounts `json:"counts"`
	Total  int            `json:"total"`
}

// SetReactionResult is returned after a reaction upsert.
type SetReactionResult struct {
	Type          ReactionType   `json:"type"`
	Counts        ReactionCounts `json:"counts"`
	Total         int            `json:"total"`
	ActorReaction *Reaction      `json:"actorReaction"`
}

// RemoveReactionResult is returned after a reaction removal.
type RemoveReactionResult struct {
	Removed bool           `json:"removed"`
	Counts  ReactionCounts `json:"counts"`
	Total   int            `json:"total"`
}

// Reaction errors
var (
	ErrInvalidReactionType = NewError(KindValidation, "invalid reaction type")
	ErrReactionNotFound    = NewError(KindNotFound, "reaction not found")
)
