package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement/internal/model"
)

func TestStore_ClockIsStrictlyIncreasing(t *testing.T) {
	s := NewStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.now()
	for i := 0; i < 100; i++ {
		next := s.now()
		assert.True(t, next.After(prev))
		assert.Equal(t, next, next.Truncate(time.Millisecond))
		prev = next
	}
}

func TestUsers_UniqueUsername(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &model.User{Username: "alice"}))
	err := repos.Users.Create(ctx, &model.User{Username: "alice"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestShares_ListRecentSkipsNonPublic(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()

	user := &model.User{Username: "alice"}
	require.NoError(t, repos.Users.Create(ctx, user))

	var shares []*model.Share
	for i, audience := range []model.Audience{model.AudiencePublic, model.AudiencePrivate, model.AudiencePublic} {
		post := &model.Post{AuthorID: user.ID, Content: string(rune('a' + i))}
		require.NoError(t, repos.Posts.Create(ctx, post))
		share := &model.Share{ActorID: user.ID, OriginalPostID: post.ID, Audience: audience}
		_, err := repos.Shares.Upsert(ctx, share, model.ShareUpdate{Caption: true, Audience: true})
		require.NoError(t, err)
		shares = append(shares, share)
	}

	recent, err := repos.Shares.ListRecent(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, shares[2].ID, recent[0].ID)
	assert.Equal(t, shares[0].ID, recent[1].ID)

	after := model.FeedCursor{CreatedAt: shares[2].CreatedAt, ShareID: shares[2].ID}
	older, err := repos.Shares.ListRecent(ctx, &after, 10)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, shares[0].ID, older[0].ID)
}

func TestShares_ListRecentPagesThroughSameInstant(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2026, 4, 2, 10, 0, 0, 500000, time.UTC)
	s.SetClock(func() time.Time { return fixed })
	repos := s.Repositories()
	ctx := context.Background()

	user := &model.User{Username: "alice"}
	require.NoError(t, repos.Users.Create(ctx, user))

	want := map[string]bool{}
	for i := 0; i < 4; i++ {
		post := &model.Post{AuthorID: user.ID}
		require.NoError(t, repos.Posts.Create(ctx, post))
		share := &model.Share{ActorID: user.ID, OriginalPostID: post.ID, Audience: model.AudiencePublic}
		_, err := repos.Shares.Upsert(ctx, share, model.ShareUpdate{Audience: true})
		require.NoError(t, err)
		require.Equal(t, fixed, share.CreatedAt)
		want[share.ID] = true
	}

	got := map[string]bool{}
	var after *model.FeedCursor
	for i := 0; i < 10; i++ {
		page, err := repos.Shares.ListRecent(ctx, after, 1)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		assert.False(t, got[page[0].ID], "share %s returned twice", page[0].ID)
		got[page[0].ID] = true
		after = &model.FeedCursor{CreatedAt: page[0].CreatedAt, ShareID: page[0].ID}
	}
	assert.Equal(t, want, got)
}

func TestShares_UpsertKeepsOmittedFields(t *testing.T) {
	repos := NewStore().Repositories()
	ctx := context.Background()

	user := &model.User{Username: "alice"}
	require.NoError(t, repos.Users.Create(ctx, user))
	post := &model.Post{AuthorID: user.ID}
	require.NoError(t, repos.Posts.Create(ctx, post))

	caption := "mine"
	share := &model.Share{ActorID: user.ID, OriginalPostID: post.ID, Caption: &caption, Audience: model.AudienceFriends}
	_, err := repos.Shares.Upsert(ctx, share, model.ShareUpdate{Caption: true, Audience: true})
	require.NoError(t, err)

	again := &model.Share{ActorID: user.ID, OriginalPostID: post.ID, Audience: model.AudiencePublic}
	created, err := repos.Shares.Upsert(ctx, again, model.ShareUpdate{})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, share.ID, again.ID)
	assert.Equal(t, model.AudienceFriends, again.Audience)
	require.NotNil(t, again.Caption)
	assert.Equal(t, "mine", *again.Caption)
}

func TestShares_DeleteCascadeCountsDropToZero(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	user := &model.User{Username: "alice"}
	require.NoError(t, repos.Users.Create(ctx, user))
	post := &model.Post{AuthorID: user.ID}
	require.NoError(t, repos.Posts.Create(ctx, post))
	share := &model.Share{ActorID: user.ID, OriginalPostID: post.ID, Audience: model.AudiencePublic}
	_, err := repos.Shares.Upsert(ctx, share, model.ShareUpdate{Caption: true, Audience: true})
	require.NoError(t, err)

	_, err = repos.Reactions.Upsert(ctx, user.ID, share.ID, model.TargetShare, model.ReactionSad)
	require.NoError(t, err)
	require.NoError(t, repos.Comments.Create(ctx, &model.Comment{
		AuthorID: user.ID, TargetID: share.ID, TargetKind: model.TargetShare, Content: "hi",
	}))
	assert.Equal(t, 1, s.ReactionCount(share.ID, model.TargetShare))
	assert.Equal(t, 1, s.CommentCount(share.ID, model.TargetShare))

	_, err = repos.Shares.DeleteCascade(ctx, share.ID, user.ID)
	require.NoError(t, err)
	assert.Zero(t, s.ReactionCount(share.ID, model.TargetShare))
	assert.Zero(t, s.CommentCount(share.ID, model.TargetShare))

	_, err = repos.Reactions.Upsert(ctx, user.ID, share.ID, model.TargetShare, model.ReactionSad)
	assert.ErrorIs(t, err, model.ErrTargetNotFound)
}

func TestReactions_GetByActorCanonicalizesLegacyCase(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	post := &model.Post{AuthorID: "u1"}
	require.NoError(t, repos.Posts.Create(ctx, post))
	_, err := repos.Reactions.Upsert(ctx, "u1", post.ID, model.TargetPost, model.ReactionType("HEART"))
	require.NoError(t, err)

	reaction, err := repos.Reactions.GetByActor(ctx, "u1", post.ID, model.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionHeart, reaction.Type)

	counts, err := repos.Reactions.CountByType(ctx, post.ID, model.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.ReactionHeart])
}
