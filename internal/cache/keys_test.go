package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"engagement/internal/model"
)

func TestKeysFor_ReactionOnPost(t *testing.T) {
	keys := KeysFor(MutationReactionSet, Scope{ActorID: "u1", TargetID: "p1", TargetKind: model.TargetPost})
	assert.Equal(t, []string{"post:p1", "reactions:post:p1", "user:u1:reactions", "feed"}, keys)
}

func TestKeysFor_ReactionOnShare(t *testing.T) {
	keys := KeysFor(MutationReactionRemove, Scope{ActorID: "u1", TargetID: "s1", TargetKind: model.TargetShare, PostID: "p1"})
	assert.Equal(t, []string{"share:s1", "reactions:share:s1", "user:u1:reactions", "feed"}, keys)
}

func TestKeysFor_LikeToggle(t *testing.T) {
	keys := KeysFor(MutationLikeToggle, Scope{ActorID: "u1", TargetID: "p1", TargetKind: model.TargetPost})
	assert.Equal(t, []string{"post:p1", "likes:post:p1", "user:u1:likes", "feed"}, keys)
}

func TestKeysFor_ShareDeleteDropsShareAggregates(t *testing.T) {
	keys := KeysFor(MutationShareDelete, Scope{ActorID: "u1", TargetID: "s1", TargetKind: model.TargetShare, PostID: "p1"})
	assert.Equal(t, []string{
		"share:s1", "post:p1", "shares:post:p1",
		"reactions:share:s1", "comments:share:s1",
		"user:u1:shares", "feed",
	}, keys)
}

func TestKeysFor_CommentOnShare(t *testing.T) {
	keys := KeysFor(MutationCommentAdd, Scope{ActorID: "u2", TargetID: "s9", TargetKind: model.TargetShare, PostID: "p1"})
	assert.Equal(t, []string{"share:s9", "comments:share:s9", "user:u2:comments", "feed"}, keys)
}

func TestKeysFor_UnknownMutation(t *testing.T) {
	assert.Empty(t, KeysFor(Mutation("post.publish"), Scope{TargetID: "p1"}))
}

// Every mutation must drop the detail key, the actor collection and the feed.
func TestInvalidationTable_Coverage(t *testing.T) {
	scope := Scope{ActorID: "a", TargetID: "t", TargetKind: model.TargetPost}
	for m := range InvalidationTable {
		keys := KeysFor(m, scope)
		assert.Contains(t, keys, "post:t", m)
		assert.Contains(t, keys, "feed", m)

		hasActorKey := false
		for _, k := range keys {
			if len(k) > len("user:a:") && k[:len("user:a:")] == "user:a:" {
				hasActorKey = true
			}
		}
		assert.True(t, hasActorKey, m)
	}
}

func TestPublishedRules(t *testing.T) {
	rules := PublishedRules()
	assert.Equal(t, 30, rules.StalenessWindowSeconds)
	assert.Len(t, rules.Rules, len(InvalidationTable))
	for i := 1; i < len(rules.Rules); i++ {
		assert.Less(t, rules.Rules[i-1].Mutation, rules.Rules[i].Mutation)
	}
}

func TestCountKeysMatchTemplates(t *testing.T) {
	scope := Scope{ActorID: "a", TargetID: "s1", TargetKind: model.TargetShare}
	assert.Contains(t, KeysFor(MutationReactionSet, scope), ReactionCountsKey(model.TargetShare, "s1"))
	assert.Contains(t,
		KeysFor(MutationLikeToggle, Scope{ActorID: "a", TargetID: "p1", TargetKind: model.TargetPost}),
		LikeCountKey("p1"))
}
