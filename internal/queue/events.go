package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"engagement/internal/model"
)

// Event types for the engagement stream
const (
	EventReactionSet     = "reaction_set"
	EventReactionRemoved = "reaction_removed"
	EventLikeToggled     = "like_toggled"
	EventShareCreated    = "share_created"
	EventShareUpdated    = "share_updated"
	EventShareDeleted    = "share_deleted"
	EventCommentAdded    = "comment_added"
	EventCommentUpdated  = "comment_updated"
	EventCommentDeleted  = "comment_deleted"
)

// Stream names
const (
	StreamEngagement = "stream:engagement"
)

// Consumer group name for engagement workers
const (
	ConsumerGroupEngagement = "engagement_workers"
)

// EngagementEvent is published after every committed ledger mutation.
// InvalidateKeys carries the cache keys the mutation made stale so other
// replicas and clients can drop their copies.
type EngagementEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds

	ActorID    string           `json:"actor_id"`
	TargetID   string           `json:"target_id,omitempty"`
	TargetKind model.TargetKind `json:"target_kind,omitempty"`

	PostID    string `json:"post_id,omitempty"`
	ShareID   string `json:"share_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`

	// Reaction events
	ReactionType model.ReactionType `json:"reaction_type,omitempty"`
	// Like events: state after the toggle
	Active bool `json:"active,omitempty"`
	// Share events
	Audience model.Audience `json:"audience,omitempty"`
	// ShareCreatedAt is the share's creation time in Unix microseconds,
	// the precision the feed orders by.
	ShareCreatedAt int64 `json:"share_created_at,omitempty"`

	InvalidateKeys []string `json:"invalidate_keys,omitempty"`
}

func newEvent(eventType, actorID string, keys []string) EngagementEvent {
	return EngagementEvent{
		Type:           eventType,
		Timestamp:      time.Now().UnixMilli(),
		ActorID:        actorID,
		InvalidateKeys: keys,
	}
}

// NewReactionEvent creates a reaction_set event, or reaction_removed when
// reactionType is empty.
func NewReactionEvent(actorID, targetID string, kind model.TargetKind, reactionType model.ReactionType, keys []string) EngagementEvent {
	eventType := EventReactionSet
	if reactionType == "" {
		eventType = EventReactionRemoved
	}
	e := newEvent(eventType, actorID, keys)
	e.TargetID = targetID
	e.TargetKind = kind
	e.ReactionType = reactionType
	if kind == model.TargetPost {
		e.PostID = targetID
	} else {
		e.ShareID = targetID
	}
	return e
}

// NewLikeToggledEvent records the like state after a toggle.
func NewLikeToggledEvent(actorID, postID string, liked bool, keys []string) EngagementEvent {
	e := newEvent(EventLikeToggled, actorID, keys)
	e.TargetID = postID
	e.TargetKind = model.TargetPost
	e.PostID = postID
	e.Active = liked
	return e
}

// NewShareEvent creates share_created, share_updated or share_deleted.
// ShareCreatedAt lets the worker score the share in the feed.
func NewShareEvent(eventType string, share *model.Share, keys []string) EngagementEvent {
	e := newEvent(eventType, share.ActorID, keys)
	e.TargetID = share.ID
	e.TargetKind = model.TargetShare
	e.ShareID = share.ID
	e.PostID = share.OriginalPostID
	e.Audience = share.Audience
	if !share.CreatedAt.IsZero() {
		e.ShareCreatedAt = share.CreatedAt.UnixMicro()
	}
	return e
}

// NewCommentEvent creates comment_added, comment_updated or comment_deleted.
func NewCommentEvent(eventType string, comment *model.Comment, keys []string) EngagementEvent {
	e := newEvent(eventType, comment.AuthorID, keys)
	e.TargetID = comment.TargetID
	e.TargetKind = comment.TargetKind
	e.CommentID = comment.ID
	if comment.TargetKind == model.TargetPost {
		e.PostID = comment.TargetID
	} else {
		e.ShareID = comment.TargetID
	}
	return e
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e EngagementEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEngagementEvent parses an event from Redis stream message values.
func ParseEngagementEvent(values map[string]interface{}) (EngagementEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return EngagementEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event EngagementEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return EngagementEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
