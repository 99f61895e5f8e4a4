package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReactionType_AnyCasingRoundTrips(t *testing.T) {
	for _, canonical := range ReactionTypes {
		s := string(canonical)
		for _, raw := range []string{s, strings.ToUpper(s), strings.ToLower(s), " " + s + " "} {
			got, err := ParseReactionType(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, canonical, got, raw)
		}
	}
}

func TestParseReactionType_Unknown(t *testing.T) {
	for _, raw := range []string{"", "Love", "thumbs", "LIKES"} {
		_, err := ParseReactionType(raw)
		assert.ErrorIs(t, err, ErrInvalidReactionType, raw)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}

func TestReactionCounts_MergesLegacyCasing(t *testing.T) {
	c := NewReactionCounts()
	c.Add("HEART", 2)
	c.Add("Heart", 1)
	c.Add("sad", 4)
	c.Add("bogus", 9)

	assert.Len(t, c, len(ReactionTypes))
	assert.Equal(t, 3, c[ReactionHeart])
	assert.Equal(t, 4, c[ReactionSad])
	assert.Equal(t, 0, c[ReactionAngry])
	assert.Equal(t, 7, c.Total())
}

func TestParseTargetKind(t *testing.T) {
	k, err := ParseTargetKind("SHARE")
	require.NoError(t, err)
	assert.Equal(t, TargetShare, k)

	_, err = ParseTargetKind("story")
	assert.ErrorIs(t, err, ErrInvalidTargetKind)
}

func TestParseAudience(t *testing.T) {
	tests := []struct {
		raw  string
		want Audience
		err  error
	}{
		{"", AudiencePublic, nil},
		{"friends", AudienceFriends, nil},
		{"PRIVATE", AudiencePrivate, nil},
		{"everyone", "", ErrInvalidAudience},
	}
	for _, tt := range tests {
		got, err := ParseAudience(tt.raw)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeCommentContent(t *testing.T) {
	got, err := NormalizeCommentContent("  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = NormalizeCommentContent(" \n\t ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = NormalizeCommentContent(strings.Repeat("é", MaxCommentLength))
	assert.NoError(t, err)

	_, err = NormalizeCommentContent(strings.Repeat("a", MaxCommentLength+1))
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestPagination(t *testing.T) {
	p := NewPage(1, 10)
	assert.True(t, p.Paginate(11).HasNext)
	assert.False(t, p.Paginate(10).HasNext)
	assert.Equal(t, 2, p.Paginate(11).TotalPages)

	p = NewPage(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageLimit, p.Limit)

	p = NewPage(3, 1000)
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 2*MaxPageLimit, p.Offset())

	empty := NewPageResult[Comment](nil, NewPage(1, 10), 0)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.Pagination.TotalPages)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrShareNotFound))
	assert.Equal(t, KindAuthorization, KindOf(ErrNotCommentOwner))
	assert.Equal(t, KindUnexpected, KindOf(assert.AnError))
}

func TestFeedCursor_RoundTripKeepsMicroseconds(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 0, 0, 123456789, time.UTC)
	c := FeedCursor{CreatedAt: at, ShareID: "a1b2"}
	assert.Equal(t, "a1b2:"+"1775124000123456", c.String())

	parsed, err := ParseFeedCursor(c.String())
	require.NoError(t, err)
	assert.Equal(t, "a1b2", parsed.ShareID)
	assert.Equal(t, at.Truncate(time.Microsecond), parsed.CreatedAt)
}

func TestFeedCursor_OlderBreaksTiesOnID(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	c := FeedCursor{CreatedAt: at, ShareID: "m"}

	assert.True(t, c.Older(at.Add(-time.Microsecond), "z"))
	assert.False(t, c.Older(at.Add(time.Microsecond), "a"))
	assert.True(t, c.Older(at, "l"))
	assert.False(t, c.Older(at, "m"), "the cursor row itself was already served")
	assert.False(t, c.Older(at, "n"))
	// Sub-microsecond differences are below the stored precision
	assert.False(t, c.Older(at.Add(500*time.Nanosecond), "m"))
}
