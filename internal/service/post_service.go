package service

import (
	"context"
	"strings"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"github.com/google/uuid"
)

type PostService struct {
	posts repository.PostRepository
	now   func() time.Time
}

// PostInput is used for both posts and comments. Name and Avatar fall back
// to the author's token claims when blank.
type PostInput struct {
	Text   string `json:"text" form:"text"`
	Name   string `json:"name" form:"name"`
	Avatar string `json:"avatar" form:"avatar"`
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts, now: time.Now}
}

func (in PostInput) validate() error {
	var f validation.Fields
	f.Required("text", in.Text, "Text field is required")
	f.Length("text", strings.TrimSpace(in.Text), 10, 300, "Post must be between 10 and 300 characters")
	return f.Err()
}

func (in PostInput) author(id *auth.Identity) (name, avatar string) {
	name, avatar = strings.TrimSpace(in.Name), strings.TrimSpace(in.Avatar)
	if name == "" {
		name = id.Name
	}
	if avatar == "" {
		avatar = id.Avatar
	}
	return name, avatar
}

func (s *PostService) get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewFieldNotFoundError("nopostfound", "No Post Found with that ID")
		}
		return nil, err
	}
	return post, nil
}

// List returns posts newest first.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	return s.get(ctx, postID)
}

func (s *PostService) Create(ctx context.Context, id *auth.Identity, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	name, avatar := in.author(id)
	post := &models.Post{
		UserID: id.ID,
		Text:   strings.TrimSpace(in.Text),
		Name:   name,
		Avatar: avatar,
		Date:   s.now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post owned by userID.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.get(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("notauthorized", "User not authorized to delete this post")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewFieldNotFoundError("nopostfound", "No Post Found with that ID")
		}
		return err
	}
	return nil
}

func (s *PostService) Like(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, models.NewConflictError("alreadyliked", "User already like this Post")
	}
	post.Likes = models.Prepend(post.Likes, models.Like{User: userID})
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordPostReaction("like")
	return post, nil
}

func (s *PostService) Unlike(ctx context.Context, userID, postID string) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	rest, ok := models.RemoveFunc(post.Likes, func(l models.Like) bool { return l.User == userID })
	if !ok {
		return nil, models.NewConflictError("alreadyliked", "User has not liked this Post Yet")
	}
	post.Likes = rest
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordPostReaction("unlike")
	return post, nil
}

func (s *PostService) AddComment(ctx context.Context, id *auth.Identity, postID string, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	name, avatar := in.author(id)
	post.Comments = models.Prepend(post.Comments, models.Comment{
		ID:     uuid.NewString(),
		Text:   strings.TrimSpace(in.Text),
		Name:   name,
		Avatar: avatar,
		User:   id.ID,
		Date:   s.now().UTC(),
	})
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordPostReaction("comment")
	return post, nil
}

// RemoveComment deletes a comment by id. Any authenticated user may remove
// any comment.
func (s *PostService) RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error) {
	post, err := s.get(ctx, postID)
	if err != nil {
		return nil, err
	}
	rest, ok := models.RemoveByID(post.Comments, commentID)
	if !ok {
		return nil, models.NewFieldNotFoundError("commentnotexists", "Comment not Found")
	}
	post.Comments = rest
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordPostReaction("uncomment")
	return post, nil
}
