// Command seed fills a development database with fake users, posts and
// engagement.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"engagement/internal/cache"
	"engagement/internal/config"
	"engagement/internal/database"
	"engagement/internal/model"
	"engagement/internal/queue"
	"engagement/internal/repository"
	"engagement/internal/service"
)

func main() {
	users := flag.Int("users", 20, "number of users")
	posts := flag.Int("posts", 50, "number of posts")
	actions := flag.Int("actions", 500, "number of reactions, likes, shares and comments")
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	flag.Parse()
	if *users < 1 || *posts < 1 {
		log.Fatalf("Seed needs at least one user and one post")
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	gofakeit.Seed(*seed)

	ctx := context.Background()
	db, err := database.ConnectDSN(config.LoadDatabaseDSN())
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	repos := repository.Repositories{
		Users:     repository.NewUserRepository(db),
		Posts:     repository.NewPostRepository(db),
		Reactions: repository.NewReactionRepository(db),
		Likes:     repository.NewLikeRepository(db),
		Shares:    repository.NewShareRepository(db),
		Comments:  repository.NewCommentRepository(db),
	}
	s := newSeeder(repos)

	if err := s.run(ctx, *users, *posts, *actions); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
	log.Printf("Seed OK: seed=%d users=%d posts=%d actions=%d", *seed, len(s.userIDs), len(s.postIDs), *actions)
}

type seeder struct {
	repos     repository.Repositories
	reactions *service.ReactionService
	likes     *service.LikeService
	shares    *service.ShareService
	comments  *service.CommentService

	userIDs  []string
	postIDs  []string
	shareIDs []string
}

func newSeeder(repos repository.Repositories) *seeder {
	// No cache or broker: seeding writes straight to the ledgers
	notifier := service.NewNotifier(cache.NopStore{}, queue.NopPublisher{})
	shares := service.NewShareService(repos, notifier, nil)
	return &seeder{
		repos:     repos,
		reactions: service.NewReactionService(repos, nil, 0, notifier, nil),
		likes:     service.NewLikeService(repos, nil, 0, notifier, nil),
		shares:    shares,
		comments:  service.NewCommentService(repos, notifier, nil),
	}
}

func (s *seeder) run(ctx context.Context, users, posts, actions int) error {
	for i := 0; i < users; i++ {
		display := gofakeit.Name()
		avatar := gofakeit.URL()
		u := &model.User{
			Username:    gofakeit.Username() + gofakeit.DigitN(4),
			DisplayName: &display,
			AvatarURL:   &avatar,
		}
		if err := s.repos.Users.Create(ctx, u); err != nil {
			return err
		}
		s.userIDs = append(s.userIDs, u.ID)
	}

	for i := 0; i < posts; i++ {
		p := &model.Post{AuthorID: s.randomUser(), Content: gofakeit.Sentence(gofakeit.Number(5, 25))}
		if err := s.repos.Posts.Create(ctx, p); err != nil {
			return err
		}
		s.postIDs = append(s.postIDs, p.ID)
	}

	audiences := []string{"Public", "Public", "Public", "Friends", "Private"}
	for i := 0; i < actions; i++ {
		actor, post := s.randomUser(), s.randomPost()
		var err error
		switch gofakeit.Number(0, 4) {
		case 0:
			rt := model.ReactionTypes[gofakeit.Number(0, len(model.ReactionTypes)-1)]
			_, _, err = s.reactions.Set(ctx, actor, post, model.TargetPost, string(rt))
		case 1:
			_, _, err = s.likes.Toggle(ctx, actor, post)
		case 2:
			caption := gofakeit.Sentence(6)
			var out *service.ShareOutcome
			out, _, err = s.shares.Create(ctx, actor, post, model.CreateShareRequest{
				Caption:  &caption,
				Audience: audiences[gofakeit.Number(0, len(audiences)-1)],
			})
			if err == nil && out.Created {
				s.shareIDs = append(s.shareIDs, out.Share.ID)
			}
		case 3:
			_, _, err = s.comments.Add(ctx, actor, post, model.TargetPost, gofakeit.Sentence(gofakeit.Number(3, 20)))
		case 4:
			if len(s.shareIDs) == 0 {
				continue
			}
			share := s.shareIDs[gofakeit.Number(0, len(s.shareIDs)-1)]
			if gofakeit.Bool() {
				_, _, err = s.reactions.Set(ctx, actor, share, model.TargetShare, "Heart")
			} else {
				_, _, err = s.comments.Add(ctx, actor, share, model.TargetShare, gofakeit.Sentence(8))
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) randomUser() string {
	return s.userIDs[gofakeit.Number(0, len(s.userIDs)-1)]
}

func (s *seeder) randomPost() string {
	return s.postIDs[gofakeit.Number(0, len(s.postIDs)-1)]
}
