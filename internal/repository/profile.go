package repository

import (
	"context"
	"log/slog"

	"devconnector/internal/models"
	"devconnector/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations.
// Reads preload the owning user's id, name and avatar.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	// Save writes every column of profile, including its embedded lists.
	// Callers load, modify and save; concurrent writers to the same profile
	// are last-write-wins because nothing guards the round trip.
	Save(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*models.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*models.Profile, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles")}
}

func withOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "avatar")
	})
}

func profileWriteError(err error) error {
	if col, dup := uniqueViolation(err); dup {
		if col == "user_id" {
			return models.NewConflictError("profile", "Profile already exists for this user")
		}
		return models.NewConflictError("handle", "That handle already exists")
	}
	return models.NewInternalError(err)
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (err error) {
	ctx, end := traced(ctx, "profiles", "Create")
	defer func() { end(err) }()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return profileWriteError(err)
	}
	r.log.LogCreate(ctx, slog.String("profile_id", profile.ID), slog.String("handle", profile.Handle))
	return nil
}

func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) (err error) {
	ctx, end := traced(ctx, "profiles", "Save")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).
		Model(profile).
		Select("*").
		Omit(clause.Associations).
		Updates(profile)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return profileWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.ID)
	}
	r.log.LogUpdate(ctx, slog.String("profile_id", profile.ID))
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (_ *models.Profile, err error) {
	ctx, end := traced(ctx, "profiles", "GetByUserID")
	defer func() { end(err) }()

	var profile models.Profile
	if err := withOwner(r.db.WithContext(ctx)).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "Profile for user", userID)
	}
	return &profile, nil
}

func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (_ *models.Profile, err error) {
	ctx, end := traced(ctx, "profiles", "GetByHandle")
	defer func() { end(err) }()

	var profile models.Profile
	if err := withOwner(r.db.WithContext(ctx)).Where("handle = ?", handle).First(&profile).Error; err != nil {
		return nil, notFoundOr(err, "Profile with handle", handle)
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) (_ []*models.Profile, err error) {
	ctx, end := traced(ctx, "profiles", "List")
	defer func() { end(err) }()

	profiles := []*models.Profile{}
	q := withOwner(r.db.WithContext(ctx)).Order("date ASC").Order("id ASC")
	if err := paginate(q, limit, offset).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID string) (err error) {
	ctx, end := traced(ctx, "profiles", "DeleteByUserID")
	defer func() { end(err) }()

	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	r.log.LogDelete(ctx, slog.String("owner_id", userID), slog.Int64("rows", res.RowsAffected))
	return nil
}
