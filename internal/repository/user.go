package repository

import (
	"context"
	"errors"
	"log/slog"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines the interface for account data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns (nil, nil) when no account uses email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, end := traced(ctx, "users", "Create")
	defer func() { end(err) }()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if _, dup := uniqueViolation(err); dup {
			return models.NewConflictError("email", "Email already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, slog.String("account_id", user.ID))
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (_ *models.User, err error) {
	ctx, end := traced(ctx, "users", "GetByID")
	defer func() { end(err) }()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, end := traced(ctx, "users", "GetByEmail")
	defer func() { end(err) }()

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := traced(ctx, "users", "Delete")
	defer func() { end(err) }()

	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, slog.String("account_id", id))
	return nil
}
