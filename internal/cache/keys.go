package cache

import (
	"sort"
	"strings"
	"time"

	"engagement/internal/model"
)

// StalenessWindow bounds how long a cached aggregate may lag the ledger.
const StalenessWindow = 30 * time.Second

// Mutation names a ledger write that invalidates cached views.
type Mutation string

const (
	MutationReactionSet    Mutation = "reaction.set"
	MutationReactionRemove Mutation = "reaction.remove"
	MutationLikeToggle     Mutation = "like.toggle"
	MutationShareCreate    Mutation = "share.create"
	MutationShareDelete    Mutation = "share.delete"
	MutationCommentAdd     Mutation = "comment.add"
	MutationCommentUpdate  Mutation = "comment.update"
	MutationCommentDelete  Mutation = "comment.delete"
)

// Key templates. Placeholders are filled from a Scope.
const (
	KeyTargetDetail   = "{kind}:{targetId}"
	KeyPostDetail     = "post:{postId}"
	KeyReactions      = "reactions:{kind}:{targetId}"
	KeyPostLikes      = "likes:post:{postId}"
	KeyComments       = "comments:{kind}:{targetId}"
	KeyPostShares     = "shares:post:{postId}"
	KeyShareReactions = "reactions:share:{targetId}"
	KeyShareComments  = "comments:share:{targetId}"
	KeyUserLikes      = "user:{actorId}:likes"
	KeyUserShares     = "user:{actorId}:shares"
	KeyUserReactions  = "user:{actorId}:reactions"
	KeyUserComments   = "user:{actorId}:comments"
	KeyFeed           = "feed"
)

// InvalidationTable maps every mutation to the key templates it makes
// stale. Each entry names the target detail, the aggregate, the actor's
// collection and the feed.
var InvalidationTable = map[Mutation][]string{
	MutationReactionSet:    {KeyTargetDetail, KeyReactions, KeyUserReactions, KeyFeed},
	MutationReactionRemove: {KeyTargetDetail, KeyReactions, KeyUserReactions, KeyFeed},
	MutationLikeToggle:     {KeyTargetDetail, KeyPostLikes, KeyUserLikes, KeyFeed},
	MutationShareCreate:    {KeyTargetDetail, KeyPostDetail, KeyPostShares, KeyUserShares, KeyFeed},
	MutationShareDelete:    {KeyTargetDetail, KeyPostDetail, KeyPostShares, KeyShareReactions, KeyShareComments, KeyUserShares, KeyFeed},
	MutationCommentAdd:     {KeyTargetDetail, KeyComments, KeyUserComments, KeyFeed},
	MutationCommentUpdate:  {KeyTargetDetail, KeyComments, KeyUserComments, KeyFeed},
	MutationCommentDelete:  {KeyTargetDetail, KeyComments, KeyUserComments, KeyFeed},
}

// Scope names the rows a mutation touched.
type Scope struct {
	ActorID    string
	TargetID   string
	TargetKind model.TargetKind
	// PostID is the post behind the target: the target itself for post
	// mutations, the original post for share mutations.
	PostID string
}

// KeysFor expands the templates of mutation for scope, dropping duplicates
// and preserving table order. Unknown mutations yield no keys.
func KeysFor(mutation Mutation, scope Scope) []string {
	templates := InvalidationTable[mutation]
	if len(templates) == 0 {
		return nil
	}

	postID := scope.PostID
	if postID == "" && scope.TargetKind == model.TargetPost {
		postID = scope.TargetID
	}
	r := strings.NewReplacer(
		"{kind}", string(scope.TargetKind),
		"{targetId}", scope.TargetID,
		"{actorId}", scope.ActorID,
		"{postId}", postID,
	)

	keys := make([]string, 0, len(templates))
	seen := make(map[string]struct{}, len(templates))
	for _, tmpl := range templates {
		key := r.Replace(tmpl)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// Rule is one published entry of the invalidation table.
type Rule struct {
	Mutation Mutation `json:"mutation"`
	Keys     []string `json:"keys"`
}

// Rules describes the whole contract for clients.
type Rules struct {
	StalenessWindowSeconds int    `json:"stalenessWindowSeconds"`
	Rules                  []Rule `json:"rules"`
}

// PublishedRules returns the invalidation table in mutation order.
func PublishedRules() Rules {
	rules := make([]Rule, 0, len(InvalidationTable))
	for m, keys := range InvalidationTable {
		rules = append(rules, Rule{Mutation: m, Keys: append([]string(nil), keys...)})
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Mutation < rules[j].Mutation })
	return Rules{
		StalenessWindowSeconds: int(StalenessWindow / time.Second),
		Rules:                  rules,
	}
}

// ReactionCountsKey is where a target's aggregate counts are cached.
func ReactionCountsKey(kind model.TargetKind, targetID string) string {
	return "reactions:" + string(kind) + ":" + targetID
}

// LikeCountKey is where a post's like count is cached.
func LikeCountKey(postID string) string {
	return "likes:post:" + postID
}
