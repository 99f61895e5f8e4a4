package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagement/internal/cache"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
	"engagement/internal/repository/memory"
	"engagement/internal/service"
)

// =============================================================================
// Test doubles
// =============================================================================

// mapStore is an in-process cache.Store.
type mapStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	deleted []string
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string][]byte)}
}

func (m *mapStore) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mapStore) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *mapStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.deleted = append(m.deleted, keys...)
	return nil
}

func (m *mapStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.EngagementEvent
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e queue.EngagementEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return fmt.Sprintf("%d-0", len(p.events)), nil
}

func (p *recordingPublisher) last() queue.EngagementEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	store     *memory.Store
	repos     repository.Repositories
	cache     *mapStore
	publisher *recordingPublisher

	reactions *service.ReactionService
	likes     *service.LikeService
	shares    *service.ShareService
	comments  *service.CommentService
	feed      *service.FeedService

	alice, bob string
	post       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     memory.NewStore(),
		cache:     newMapStore(),
		publisher: &recordingPublisher{},
	}
	f.repos = f.store.Repositories()
	notifier := service.NewNotifier(f.cache, f.publisher)

	f.reactions = service.NewReactionService(f.repos, f.cache, 30*time.Second, notifier, nil)
	f.likes = service.NewLikeService(f.repos, f.cache, 30*time.Second, notifier, nil)
	f.shares = service.NewShareService(f.repos, notifier, nil)
	f.comments = service.NewCommentService(f.repos, notifier, nil)
	f.feed = service.NewFeedService(nil, f.shares, f.repos)

	f.alice = f.user(t, "alice")
	f.bob = f.user(t, "bob")

	post := &model.Post{AuthorID: f.alice, Content: "hello"}
	require.NoError(t, f.repos.Posts.Create(ctx, post))
	f.post = post.ID
	return f
}

func (f *fixture) user(t *testing.T, username string) string {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u.ID
}

func (f *fixture) share(t *testing.T, actorID, audience string) *model.Share {
	t.Helper()
	out, _, err := f.shares.Create(context.Background(), actorID, f.post, model.CreateShareRequest{Audience: audience})
	require.NoError(t, err)
	return out.Share
}

// =============================================================================
// Reactions
// =============================================================================

func TestReaction_CanonicalRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, rt := range model.ReactionTypes {
		for _, raw := range []string{string(rt), strings.ToUpper(string(rt)), strings.ToLower(string(rt))} {
			res, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, raw)
			require.NoError(t, err, raw)
			assert.Equal(t, rt, res.Type)

			mine, err := f.reactions.GetActorReaction(ctx, f.bob, f.post, model.TargetPost)
			require.NoError(t, err)
			require.NotNil(t, mine)
			assert.Equal(t, rt, mine.Type)
			assert.Equal(t, string(rt), f.store.RawReactionType(f.bob, f.post, model.TargetPost))
		}
	}
}

func TestReaction_SetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, "wow")
	require.NoError(t, err)
	second, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, "WOW")
	require.NoError(t, err)

	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, 1, second.Counts[model.ReactionWow])
	assert.Equal(t, 1, second.Total)
	assert.Equal(t, first.ActorReaction.ID, second.ActorReaction.ID)
}

func TestReaction_CountsAreZeroFilled(t *testing.T) {
	f := newFixture(t)

	res, _, err := f.reactions.Set(context.Background(), f.bob, f.post, model.TargetPost, "Like")
	require.NoError(t, err)
	assert.Len(t, res.Counts, len(model.ReactionTypes))
	assert.Equal(t, 0, res.Counts[model.ReactionAngry])
}

func TestReaction_LegacyHeartBecomesSad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutRawReaction(f.bob, f.post, model.TargetPost, "HEART")

	before, err := f.reactions.GetCounts(ctx, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, 1, before.Counts[model.ReactionHeart])

	res, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, "sad")
	require.NoError(t, err)
	assert.Equal(t, model.ReactionSad, res.Type)
	assert.Equal(t, 0, res.Counts[model.ReactionHeart])
	assert.Equal(t, 1, res.Counts[model.ReactionSad])
	assert.Equal(t, "Sad", f.store.RawReactionType(f.bob, f.post, model.TargetPost))
}

func TestReaction_InvalidTypeStoresNothing(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.reactions.Set(context.Background(), f.bob, f.post, model.TargetPost, "love")
	assert.ErrorIs(t, err, model.ErrInvalidReactionType)
	assert.Equal(t, 0, f.store.ReactionCount(f.post, model.TargetPost))
	assert.Equal(t, 0, f.publisher.count())
}

func TestReaction_TargetNotFound(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.reactions.Set(context.Background(), f.bob, "missing", model.TargetShare, "Like")
	assert.ErrorIs(t, err, model.ErrTargetNotFound)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestReaction_RemoveAbsentIsNoop(t *testing.T) {
	f := newFixture(t)

	res, keys, err := f.reactions.Remove(context.Background(), f.bob, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.False(t, res.Removed)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, keys)
	assert.Equal(t, 0, f.publisher.count())
}

func TestReaction_RemoveAfterSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, "Angry")
	require.NoError(t, err)

	res, keys, err := f.reactions.Remove(ctx, f.bob, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, 0, res.Counts[model.ReactionAngry])
	assert.Contains(t, keys, "reactions:post:"+f.post)
	assert.Equal(t, queue.EventReactionRemoved, f.publisher.last().Type)

	mine, err := f.reactions.GetActorReaction(ctx, f.bob, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.Nil(t, mine)
}

func TestReaction_CountCacheInvalidatedOnWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cache.ReactionCountsKey(model.TargetPost, f.post)

	_, err := f.reactions.GetCounts(ctx, f.post, model.TargetPost)
	require.NoError(t, err)
	require.True(t, f.cache.has(key), "read path populates the cache")

	_, keys, err := f.reactions.Set(ctx, f.alice, f.post, model.TargetPost, "Heart")
	require.NoError(t, err)
	assert.False(t, f.cache.has(key), "write drops the cached aggregate before returning")

	expected := cache.KeysFor(cache.MutationReactionSet, cache.Scope{ActorID: f.alice, TargetID: f.post, TargetKind: model.TargetPost})
	assert.Equal(t, expected, keys)
	assert.Equal(t, expected, f.publisher.last().InvalidateKeys)

	counts, err := f.reactions.GetCounts(ctx, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Counts[model.ReactionHeart])
}

func TestReaction_ListNewestFirstWithFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.user(t, "carol")

	_, _, err := f.reactions.Set(ctx, f.alice, f.post, model.TargetPost, "Like")
	require.NoError(t, err)
	_, _, err = f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, "Wow")
	require.NoError(t, err)
	_, _, err = f.reactions.Set(ctx, carol, f.post, model.TargetPost, "like")
	require.NoError(t, err)

	all, err := f.reactions.List(ctx, f.post, model.TargetPost, model.NewPage(1, 20), "")
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "carol", all.Items[0].User.Username)
	assert.Equal(t, "alice", all.Items[2].User.Username)

	likes, err := f.reactions.List(ctx, f.post, model.TargetPost, model.NewPage(1, 20), "LIKE")
	require.NoError(t, err)
	assert.Equal(t, 2, likes.Pagination.Total)

	_, err = f.reactions.List(ctx, f.post, model.TargetPost, model.NewPage(1, 20), "nope")
	assert.ErrorIs(t, err, model.ErrInvalidReactionType)
}

func TestReaction_ConcurrentSetKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rt := model.ReactionTypes[i%len(model.ReactionTypes)]
			_, _, err := f.reactions.Set(ctx, f.bob, f.post, model.TargetPost, string(rt))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.store.ReactionCount(f.post, model.TargetPost))
	counts, err := f.reactions.GetCounts(ctx, f.post, model.TargetPost)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Total)
}

// =============================================================================
// Likes
// =============================================================================

func TestLike_ToggleLaw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	on, _, err := f.likes.Toggle(ctx, f.bob, f.post)
	require.NoError(t, err)
	assert.Equal(t, &model.ToggleLikeResult{Liked: true, LikeCount: 1}, on)

	off, _, err := f.likes.Toggle(ctx, f.bob, f.post)
	require.NoError(t, err)
	assert.Equal(t, &model.ToggleLikeResult{Liked: false, LikeCount: 0}, off)

	status, err := f.likes.CheckUserLiked(ctx, f.bob, f.post)
	require.NoError(t, err)
	assert.False(t, status.Liked)
	assert.Equal(t, 0, status.LikeCount)
}

func TestLike_ToggleMissingPost(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.likes.Toggle(context.Background(), f.bob, "missing")
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestLike_ConcurrentTogglesByDistinctActors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	actors := make([]string, 20)
	for i := range actors {
		actors[i] = f.user(t, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	for _, a := range actors {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			_, _, err := f.likes.Toggle(ctx, actor, f.post)
			assert.NoError(t, err)
		}(a)
	}
	wg.Wait()

	page, err := f.likes.GetPostLikes(ctx, f.post, model.NewPage(1, 100))
	require.NoError(t, err)
	assert.Equal(t, 20, page.Pagination.Total)
}

func TestLike_UserLikedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.likes.Toggle(ctx, f.bob, f.post)
	require.NoError(t, err)

	page, err := f.likes.GetUserLikedPosts(ctx, f.bob, model.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, f.post, page.Items[0].ID)
	require.NotNil(t, page.Items[0].Author)
	assert.Equal(t, "alice", page.Items[0].Author.Username)
}

// =============================================================================
// Shares
// =============================================================================

func TestShare_UpsertUpdatesExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caption := "look at this"

	first, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Caption: &caption})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, model.AudiencePublic, first.Share.Audience)
	assert.Equal(t, queue.EventShareCreated, f.publisher.last().Type)

	updated := "changed my mind"
	second, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Caption: &updated, Audience: "friends"})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Share.ID, second.Share.ID)
	assert.Equal(t, updated, *second.Share.Caption)
	assert.Equal(t, model.AudienceFriends, second.Share.Audience)
	assert.Equal(t, queue.EventShareUpdated, f.publisher.last().Type)

	require.NotNil(t, second.Share.OriginalPost)
	assert.Equal(t, "alice", second.Share.OriginalPost.Author.Username)
	assert.Equal(t, "bob", second.Share.Actor.Username)
}

func TestShare_RepeatKeepsOmittedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	caption := "just for me"

	_, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Caption: &caption, Audience: "private"})
	require.NoError(t, err)

	again, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, model.AudiencePrivate, again.Share.Audience)
	require.NotNil(t, again.Share.Caption)
	assert.Equal(t, caption, *again.Share.Caption)

	empty := "  "
	cleared, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Caption: &empty})
	require.NoError(t, err)
	assert.Nil(t, cleared.Share.Caption, "an explicit empty caption clears it")
	assert.Equal(t, model.AudiencePrivate, cleared.Share.Audience)
}

func TestShare_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	long := strings.Repeat("a", model.MaxShareCaptionLength+1)
	_, _, err := f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Caption: &long})
	assert.ErrorIs(t, err, model.ErrCaptionTooLong)

	_, _, err = f.shares.Create(ctx, f.bob, f.post, model.CreateShareRequest{Audience: "everyone"})
	assert.ErrorIs(t, err, model.ErrInvalidAudience)

	_, _, err = f.shares.Create(ctx, f.bob, "missing", model.CreateShareRequest{})
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestShare_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	share := f.share(t, f.bob, "")

	_, _, err := f.reactions.Set(ctx, f.alice, share.ID, model.TargetShare, "Laughing")
	require.NoError(t, err)
	_, _, err = f.comments.Add(ctx, f.alice, share.ID, model.TargetShare, "nice share")
	require.NoError(t, err)

	keys, err := f.shares.Delete(ctx, f.bob, share.ID)
	require.NoError(t, err)
	assert.Contains(t, keys, "reactions:share:"+share.ID)
	assert.Contains(t, keys, "comments:share:"+share.ID)
	assert.Contains(t, keys, "shares:post:"+f.post)

	assert.Equal(t, 0, f.store.ReactionCount(share.ID, model.TargetShare))
	assert.Equal(t, 0, f.store.CommentCount(share.ID, model.TargetShare))

	_, err = f.shares.Get(ctx, share.ID)
	assert.ErrorIs(t, err, model.ErrShareNotFound)
}

func TestShare_DeleteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	share := f.share(t, f.bob, "")

	_, err := f.shares.Delete(ctx, f.alice, share.ID)
	assert.ErrorIs(t, err, model.ErrNotShareOwner)

	_, err = f.shares.Delete(ctx, f.bob, "missing")
	assert.ErrorIs(t, err, model.ErrShareNotFound)

	_, err = f.shares.Get(ctx, share.ID)
	assert.NoError(t, err)
}

func TestShare_Lists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.share(t, f.alice, "")
	f.share(t, f.bob, "private")

	byPost, err := f.shares.ListForPost(ctx, f.post, model.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, byPost.Items, 2)
	assert.Equal(t, f.bob, byPost.Items[0].ActorID, "newest first")

	byUser, err := f.shares.ListForUser(ctx, f.alice, model.NewPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, byUser.Pagination.Total)

	_, err = f.shares.ListForPost(ctx, "missing", model.NewPage(1, 20))
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

// =============================================================================
// Comments
// =============================================================================

func TestComment_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.comments.Add(ctx, f.bob, f.post, model.TargetPost, "   ")
	assert.ErrorIs(t, err, model.ErrEmptyContent)

	_, _, err = f.comments.Add(ctx, f.bob, f.post, model.TargetPost, strings.Repeat("x", model.MaxCommentLength+1))
	assert.ErrorIs(t, err, model.ErrContentTooLong)

	_, _, err = f.comments.Add(ctx, f.bob, "missing", model.TargetPost, "hi")
	assert.ErrorIs(t, err, model.ErrTargetNotFound)

	c, _, err := f.comments.Add(ctx, f.bob, f.post, model.TargetPost, "  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "padded", c.Content)
	assert.Equal(t, "bob", c.Author.Username)
}

func TestComment_NonAuthorCannotDeleteOrUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _, err := f.comments.Add(ctx, f.bob, f.post, model.TargetPost, "mine")
	require.NoError(t, err)

	_, err = f.comments.Delete(ctx, f.alice, c.ID)
	assert.ErrorIs(t, err, model.ErrNotCommentOwner)
	assert.Equal(t, model.KindAuthorization, model.KindOf(err))

	_, _, err = f.comments.Update(ctx, f.alice, c.ID, "hijacked")
	assert.ErrorIs(t, err, model.ErrNotCommentOwner)

	page, err := f.comments.List(ctx, f.post, model.TargetPost, model.NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "mine", page.Items[0].Content)
}

func TestComment_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _, err := f.comments.Add(ctx, f.bob, f.post, model.TargetPost, "first")
	require.NoError(t, err)

	updated, keys, err := f.comments.Update(ctx, f.bob, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Contains(t, keys, "comments:post:"+f.post)
	assert.Equal(t, queue.EventCommentUpdated, f.publisher.last().Type)

	_, err = f.comments.Delete(ctx, f.bob, c.ID)
	require.NoError(t, err)
	_, err = f.comments.Delete(ctx, f.bob, c.ID)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}

func TestComment_PaginationBoundary(t *testing.T) {
	for _, tc := range []struct {
		n       int
		hasNext bool
	}{
		{10, false},
		{11, true},
	} {
		t.Run(fmt.Sprintf("%d comments", tc.n), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			for i := 0; i < tc.n; i++ {
				_, _, err := f.comments.Add(ctx, f.bob, f.post, model.TargetPost, fmt.Sprintf("c%d", i))
				require.NoError(t, err)
			}

			page, err := f.comments.List(ctx, f.post, model.TargetPost, model.NewPage(1, 10))
			require.NoError(t, err)
			assert.Len(t, page.Items, 10)
			assert.Equal(t, tc.hasNext, page.Pagination.HasNext)
			assert.Equal(t, "c0", page.Items[0].Content, "oldest first")
		})
	}
}

// =============================================================================
// Feed
// =============================================================================

func TestFeed_FromLedgerWithCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var public []string
	for i := 0; i < 3; i++ {
		actor := f.user(t, fmt.Sprintf("sharer%d", i))
		public = append(public, f.share(t, actor, "").ID)
	}
	f.share(t, f.bob, "private")

	first, err := f.feed.GetFeed(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, first.Shares, 2)
	assert.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, public[2], first.Shares[0].ID)

	second, err := f.feed.GetFeed(ctx, first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Shares, 1)
	assert.Equal(t, public[0], second.Shares[0].ID)
	assert.False(t, second.HasMore)
	assert.Nil(t, second.NextCursor)
}

func TestFeed_SameInstantSharesAreNotSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fixed := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { return fixed })

	want := map[string]bool{}
	for i := 0; i < 3; i++ {
		actor := f.user(t, fmt.Sprintf("burst%d", i))
		want[f.share(t, actor, "").ID] = true
	}

	got := map[string]bool{}
	var cursor *string
	for i := 0; i < 10; i++ {
		page, err := f.feed.GetFeed(ctx, cursor, 1)
		require.NoError(t, err)
		for _, sh := range page.Shares {
			assert.False(t, got[sh.ID], "share %s returned twice", sh.ID)
			got[sh.ID] = true
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, want, got)
}

func TestFeed_InvalidCursor(t *testing.T) {
	f := newFixture(t)
	for _, bad := range []string{"not-a-cursor", "s1:", ":123", "s1:1.5", "s1:-4"} {
		_, err := f.feed.GetFeed(context.Background(), &bad, 10)
		assert.ErrorIs(t, err, model.ErrInvalidCursor, bad)
	}
}
