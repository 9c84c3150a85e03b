package repository

import (
	"context"
	"log/slog"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	// Save writes every column of post, including likes and comments.
	// Concurrent like/unlike/comment calls on one post are last-write-wins.
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, end := traced(ctx, "posts", "Create")
	defer func() { end(err) }()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.String("post_id", post.ID))
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, end := traced(ctx, "posts", "GetByID")
	defer func() { end(err) }()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) (_ []*models.Post, err error) {
	ctx, end := traced(ctx, "posts", "List")
	defer func() { end(err) }()

	posts := []*models.Post{}
	q := r.db.WithContext(ctx).Order("date DESC").Order("id DESC")
	if err := paginate(q, limit, offset).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) (err error) {
	ctx, end := traced(ctx, "posts", "Save")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Model(post).Select("*").Updates(post)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.log.LogUpdate(ctx, slog.String("post_id", post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := traced(ctx, "posts", "Delete")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogDelete(ctx, slog.String("post_id", id))
	return nil
}
