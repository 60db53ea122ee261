package repository

import (
	"context"

	"hrdesk/internal/models"
	"hrdesk/internal/observability"

	"gorm.io/gorm"
)

// ProfileValueRepository stores one value per (user, profile).
type ProfileValueRepository interface {
	WithTx(tx *gorm.DB) ProfileValueRepository
	ListByUser(ctx context.Context, userID uint) ([]models.ProfileValue, error)
	Create(ctx context.Context, value *models.ProfileValue) error
	Update(ctx context.Context, value *models.ProfileValue) error
	Delete(ctx context.Context, value *models.ProfileValue) error
	ValueTaken(ctx context.Context, profileID uint, value string, excludeUserID uint) (bool, error)
}

type profileValueRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileValueRepository returns a new ProfileValueRepository implementation.
func NewProfileValueRepository(db *gorm.DB) ProfileValueRepository {
	return &profileValueRepository{db: db, log: observability.NewRepoLogger("user_profiles")}
}

func (r *profileValueRepository) WithTx(tx *gorm.DB) ProfileValueRepository {
	return &profileValueRepository{db: tx, log: r.log}
}

func (r *profileValueRepository) ListByUser(ctx context.Context, userID uint) ([]models.ProfileValue, error) {
	defer observability.TrackQuery("list", "user_profiles")()

	var values []models.ProfileValue
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("profile_id ASC").
		Find(&values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (r *profileValueRepository) Create(ctx context.Context, value *models.ProfileValue) error {
	defer observability.TrackQuery("create", "user_profiles")()

	if err := r.db.WithContext(ctx).Omit("Profile", "User").Create(value).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return wrapWrite("create profile value", err)
	}
	observability.ProfileValueWrites.WithLabelValues("create").Inc()
	r.log.LogCreate(ctx, map[string]any{"user_id": value.UserID, "profile_id": value.ProfileID})
	return nil
}

func (r *profileValueRepository) Update(ctx context.Context, value *models.ProfileValue) error {
	defer observability.TrackQuery("update", "user_profiles")()

	err := r.db.WithContext(ctx).Model(value).
		Select("value", "unique_value", "updated_at").
		Updates(value).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return wrapWrite("update profile value", err)
	}
	observability.ProfileValueWrites.WithLabelValues("update").Inc()
	r.log.LogUpdate(ctx, map[string]any{"user_id": value.UserID, "profile_id": value.ProfileID})
	return nil
}

func (r *profileValueRepository) Delete(ctx context.Context, value *models.ProfileValue) error {
	defer observability.TrackQuery("delete", "user_profiles")()

	if err := r.db.WithContext(ctx).Delete(&models.ProfileValue{}, value.ID).Error; err != nil {
		r.log.LogError(ctx, err, "delete")
		return wrapWrite("delete profile value", err)
	}
	observability.ProfileValueWrites.WithLabelValues("delete").Inc()
	r.log.LogDelete(ctx, map[string]any{"user_id": value.UserID, "profile_id": value.ProfileID})
	return nil
}

// ValueTaken reports whether a user other than excludeUserID stores value
// for the profile. Comparison is exact and runs on the unique_value digest,
// so only values written while the profile is unique are seen.
func (r *profileValueRepository) ValueTaken(ctx context.Context, profileID uint, value string, excludeUserID uint) (bool, error) {
	defer observability.TrackQuery("count", "user_profiles")()

	q := r.db.WithContext(ctx).Model(&models.ProfileValue{}).
		Where("profile_id = ? AND unique_value = ?", profileID, models.UniqueDigest(value))
	if excludeUserID != 0 {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
