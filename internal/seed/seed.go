package seed

import (
	"context"
	"fmt"
	"log/slog"

	"devconnector/internal/middleware"
	"devconnector/internal/models"
	"devconnector/internal/repository"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Users        int
	PostsPerUser int
	// MaxDays bounds how far back post dates are spread.
	MaxDays int
	// SkipBcrypt stores DefaultPassword unhashed; logins will not work.
	SkipBcrypt bool
	RandSeed   int64
}

// Result counts what a run created.
type Result struct {
	Users    int
	Profiles int
	Posts    int
	Likes    int
	Comments int
}

// Seeder writes factory-built data through the repositories.
type Seeder struct {
	db       *gorm.DB
	factory  *Factory
	opts     Options
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{
		db:       db,
		factory:  factory,
		opts:     opts,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		posts:    repository.NewPostRepository(db),
	}, nil
}

// ClearAll removes every post, profile and account.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Post{}, &models.Profile{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run creates opts.Users accounts, each with a profile and opts.PostsPerUser
// posts, then spreads likes and comments across the posts.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	log := middleware.Logger.With(slog.String("component", "seed"))

	users := make([]*models.User, 0, s.opts.Users)
	for i := range s.opts.Users {
		user := s.factory.BuildUser(i)
		if err := s.users.Create(ctx, user); err != nil {
			return res, fmt.Errorf("create user %s: %w", user.Email, err)
		}
		users = append(users, user)

		if err := s.profiles.Create(ctx, s.factory.BuildProfile(user, i)); err != nil {
			return res, fmt.Errorf("create profile for %s: %w", user.Email, err)
		}
		res.Profiles++
	}
	res.Users = len(users)
	log.Info("seeded users", slog.Int("users", res.Users))

	posts := make([]*models.Post, 0, len(users)*s.opts.PostsPerUser)
	for _, user := range users {
		for range s.opts.PostsPerUser {
			post := s.factory.BuildPost(user)
			s.engage(post, users, &res)
			if err := s.posts.Create(ctx, post); err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	res.Posts = len(posts)
	log.Info("seeded posts",
		slog.Int("posts", res.Posts),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}

// engage adds likes and comments from a random subset of users. Each user
// likes a post at most once.
func (s *Seeder) engage(post *models.Post, users []*models.User, res *Result) {
	fk := s.factory.faker
	for _, u := range users {
		if fk.Number(1, 100) <= 30 {
			post.Likes = append(post.Likes, models.Like{User: u.ID})
			res.Likes++
		}
		if fk.Number(1, 100) <= 10 {
			post.Comments = models.Prepend(post.Comments, s.factory.BuildComment(u, post))
			res.Comments++
		}
	}
}
