package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"devconnector/internal/models"

	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn     func(context.Context, *models.User) error
	getByIDFn    func(context.Context, string) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	deleteFn     func(context.Context, string) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:    func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ string) error { return nil },
	}
}

// profileRepoStub keeps profiles in a map keyed by user id.
type profileRepoStub struct {
	byUser map[string]*models.Profile
	saves  int
}

func newProfileRepoStub() *profileRepoStub {
	return &profileRepoStub{byUser: map[string]*models.Profile{}}
}

func (s *profileRepoStub) Create(_ context.Context, p *models.Profile) error {
	if _, ok := s.byUser[p.UserID]; ok {
		return models.NewConflictError("profile", "Profile already exists for this user")
	}
	if p.ID == "" {
		p.ID = "profile-" + p.UserID
	}
	cp := *p
	s.byUser[p.UserID] = &cp
	return nil
}

func (s *profileRepoStub) Save(_ context.Context, p *models.Profile) error {
	if _, ok := s.byUser[p.UserID]; !ok {
		return models.NewNotFoundError("Profile", p.ID)
	}
	s.saves++
	cp := *p
	s.byUser[p.UserID] = &cp
	return nil
}

func (s *profileRepoStub) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	cp := *p
	return &cp, nil
}

func (s *profileRepoStub) GetByHandle(_ context.Context, handle string) (*models.Profile, error) {
	for _, p := range s.byUser {
		if p.Handle == handle {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Profile", handle)
}

func (s *profileRepoStub) List(_ context.Context, _, _ int) ([]*models.Profile, error) {
	out := make([]*models.Profile, 0, len(s.byUser))
	for _, p := range s.byUser {
		out = append(out, p)
	}
	return out, nil
}

func (s *profileRepoStub) DeleteByUserID(_ context.Context, userID string) error {
	delete(s.byUser, userID)
	return nil
}

// postRepoStub keeps posts in a map keyed by id.
type postRepoStub struct {
	posts  map[string]*models.Post
	saves  int
	nextID int
}

func newPostRepoStub() *postRepoStub {
	return &postRepoStub{posts: map[string]*models.Post{}}
}

func (s *postRepoStub) Create(_ context.Context, p *models.Post) error {
	if p.ID == "" {
		s.nextID++
		p.ID = fmt.Sprintf("post-%d", s.nextID)
	}
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *postRepoStub) GetByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *p
	return &cp, nil
}

func (s *postRepoStub) List(_ context.Context, _, _ int) ([]*models.Post, error) {
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	return out, nil
}

func (s *postRepoStub) Save(_ context.Context, p *models.Post) error {
	if _, ok := s.posts[p.ID]; !ok {
		return models.NewNotFoundError("Post", p.ID)
	}
	s.saves++
	cp := *p
	s.posts[p.ID] = &cp
	return nil
}

func (s *postRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(s.posts, id)
	return nil
}

func requireAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func assertValidationError(t *testing.T, err error, field, msg string) {
	t.Helper()
	appErr := requireAppError(t, err, models.CodeValidation)
	require.Equal(t, msg, appErr.Fields[field])
}
