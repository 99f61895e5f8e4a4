package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"engagement/internal/cache"
	"engagement/internal/metrics"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
)

// ShareService manages shares. Reactions and comments on a share go
// through ReactionService and CommentService with kind share.
type ShareService struct {
	repos    repository.Repositories
	notifier *Notifier
	metrics  *metrics.Recorder
}

func NewShareService(repos repository.Repositories, notifier *Notifier, recorder *metrics.Recorder) *ShareService {
	return &ShareService{
		repos:    repos,
		notifier: notifier,
		metrics:  recorder,
	}
}

// ShareOutcome is the result of a share upsert.
type ShareOutcome struct {
	Share   *model.Share
	Created bool
}

// Create shares a post, or updates caption and audience when the actor
// already shared it. Fields omitted from a repeated share keep their value.
func (s *ShareService) Create(ctx context.Context, actorID, postID string, req model.CreateShareRequest) (*ShareOutcome, []string, error) {
	audience, err := model.ParseAudience(req.Audience)
	if err != nil {
		return nil, nil, err
	}

	var caption *string
	if req.Caption != nil {
		if utf8.RuneCountInString(*req.Caption) > model.MaxShareCaptionLength {
			return nil, nil, model.ErrCaptionTooLong
		}
		if c := strings.TrimSpace(*req.Caption); c != "" {
			caption = &c
		}
	}

	share := &model.Share{
		ActorID:        actorID,
		OriginalPostID: postID,
		Caption:        caption,
		Audience:       audience,
	}
	update := model.ShareUpdate{
		Caption:  req.Caption != nil,
		Audience: strings.TrimSpace(req.Audience) != "",
	}
	created, err := s.repos.Shares.Upsert(ctx, share, update)
	s.metrics.Mutation(string(cache.MutationShareCreate), string(model.TargetShare), err)
	if err != nil {
		return nil, nil, err
	}

	keys := cache.KeysFor(cache.MutationShareCreate, shareScope(share))
	eventType := queue.EventShareUpdated
	if created {
		eventType = queue.EventShareCreated
	}
	s.notifier.Committed(ctx, queue.NewShareEvent(eventType, share, keys))

	s.hydrate(ctx, []*model.Share{share})
	log.Printf("[ShareService] Create OK: actor=%s post=%s share=%s created=%t audience=%s",
		actorID, postID, share.ID, created, share.Audience)
	return &ShareOutcome{Share: share, Created: created}, keys, nil
}

// Delete removes the actor's share with its reactions and comments.
func (s *ShareService) Delete(ctx context.Context, actorID, shareID string) ([]string, error) {
	share, err := s.repos.Shares.DeleteCascade(ctx, shareID, actorID)
	s.metrics.Mutation(string(cache.MutationShareDelete), string(model.TargetShare), err)
	if err != nil {
		return nil, err
	}

	keys := cache.KeysFor(cache.MutationShareDelete, shareScope(share))
	s.notifier.Committed(ctx, queue.NewShareEvent(queue.EventShareDeleted, share, keys))

	log.Printf("[ShareService] Delete OK: actor=%s share=%s", actorID, shareID)
	return keys, nil
}

func (s *ShareService) Get(ctx context.Context, shareID string) (*model.Share, error) {
	share, err := s.repos.Shares.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, []*model.Share{share})
	return share, nil
}

// ListForPost lists a post's shares newest first.
func (s *ShareService) ListForPost(ctx context.Context, postID string, page model.Page) (*model.PageResult[model.Share], error) {
	ok, err := s.repos.Posts.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !ok {
		return nil, model.ErrPostNotFound
	}

	shares, total, err := s.repos.Shares.ListByPost(ctx, postID, page)
	if err != nil {
		return nil, fmt.Errorf("list shares for post: %w", err)
	}
	s.hydrateSlice(ctx, shares)
	return model.NewPageResult(shares, page, total), nil
}

// ListForUser lists a user's shares newest first.
func (s *ShareService) ListForUser(ctx context.Context, userID string, page model.Page) (*model.PageResult[model.Share], error) {
	shares, total, err := s.repos.Shares.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list shares for user: %w", err)
	}
	s.hydrateSlice(ctx, shares)
	return model.NewPageResult(shares, page, total), nil
}

func (s *ShareService) hydrateSlice(ctx context.Context, shares []model.Share) {
	ptrs := make([]*model.Share, len(shares))
	for i := range shares {
		ptrs[i] = &shares[i]
	}
	s.hydrate(ctx, ptrs)
}

// hydrate attaches the actor and the original post with its author.
// Lookup failures leave the joined fields partially filled.
func (s *ShareService) hydrate(ctx context.Context, shares []*model.Share) {
	if len(shares) == 0 {
		return
	}

	postIDs := make([]string, 0, len(shares))
	for _, sh := range shares {
		postIDs = append(postIDs, sh.OriginalPostID)
	}
	posts, err := s.repos.Posts.GetByIDs(ctx, postIDs)
	if err != nil {
		log.Printf("[ShareService] Failed to load original posts: %v", err)
		posts = map[string]model.Post{}
	}

	userIDs := make([]string, 0, 2*len(shares))
	for _, sh := range shares {
		userIDs = append(userIDs, sh.ActorID)
		if p, ok := posts[sh.OriginalPostID]; ok {
			userIDs = append(userIDs, p.AuthorID)
		}
	}
	users := summaries(ctx, s.repos.Users, userIDs)

	for _, sh := range shares {
		sh.Actor = summaryOrID(users, sh.ActorID)
		if p, ok := posts[sh.OriginalPostID]; ok {
			p.Author = summaryOrID(users, p.AuthorID)
			sh.OriginalPost = &p
		}
	}
}

func shareScope(share *model.Share) cache.Scope {
	return cache.Scope{
		ActorID:    share.ActorID,
		TargetID:   share.ID,
		TargetKind: model.TargetShare,
		PostID:     share.OriginalPostID,
	}
}
