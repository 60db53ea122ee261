package repository

import (
	"context"
	"errors"
	"time"

	"hrdesk/internal/cache"
	"hrdesk/internal/models"
	"hrdesk/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository manages the profile catalog.
type ProfileRepository interface {
	// Catalog returns every profile with its options, ordered by id. The
	// result may come from cache.
	Catalog(ctx context.Context) ([]models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uint) error
	AddOption(ctx context.Context, profileID uint, key string) (*models.SelectOption, error)
	DeleteOption(ctx context.Context, profileID, optionID uint) error
}

type profileRepository struct {
	db       *gorm.DB
	cacheTTL time.Duration
	log      *observability.RepoLogger
}

// NewProfileRepository returns a ProfileRepository. A zero cacheTTL disables
// catalog caching.
func NewProfileRepository(db *gorm.DB, cacheTTL time.Duration) ProfileRepository {
	return &profileRepository{db: db, cacheTTL: cacheTTL, log: observability.NewRepoLogger("profiles")}
}

func (r *profileRepository) Catalog(ctx context.Context) ([]models.Profile, error) {
	if r.cacheTTL <= 0 {
		return r.List(ctx)
	}

	var profiles []models.Profile
	missed := false
	err := cache.Aside(ctx, cache.CatalogKey, &profiles, r.cacheTTL, func() error {
		missed = true
		var err error
		profiles, err = r.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if missed {
		observability.CatalogCacheLookups.WithLabelValues("miss").Inc()
	} else {
		observability.CatalogCacheLookups.WithLabelValues("hit").Inc()
	}
	return profiles, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	defer observability.TrackQuery("list", "profiles")()

	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("select_options.id ASC")
		}).
		Order("profiles.id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	defer observability.TrackQuery("get", "profiles")()

	var profile models.Profile
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("select_options.id ASC")
		}).
		First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("create", "profiles")()

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return wrapWrite("create profile", err)
	}
	cache.InvalidateCatalog(ctx)
	r.log.LogCreate(ctx, map[string]any{"id": profile.ID, "slug": profile.Slug})
	return nil
}

// Update saves the scalar fields of profile. Toggling IsUnique re-derives
// the unique_value column of every stored value in the same transaction.
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	defer observability.TrackQuery("update", "profiles")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Profile
		if err := tx.First(&current, profile.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Profile", profile.ID)
			}
			return err
		}

		if err := tx.Model(profile).
			Select("slug", "type", "is_required", "is_unique", "min", "max", "updated_at").
			Updates(profile).Error; err != nil {
			return wrapWrite("update profile", err)
		}

		if current.IsUnique == profile.IsUnique {
			return nil
		}
		if !profile.IsUnique {
			err := tx.Model(&models.ProfileValue{}).
				Where("profile_id = ?", profile.ID).
				Update("unique_value", nil).Error
			return wrapWrite("clear unique profile values", err)
		}

		var stored []models.ProfileValue
		if err := tx.Where("profile_id = ?", profile.ID).Find(&stored).Error; err != nil {
			return err
		}
		for i := range stored {
			row := &stored[i]
			row.SetValue(row.Value, true)
			err := tx.Model(row).UpdateColumn("unique_value", row.UniqueValue).Error
			if isUniqueConstraintError(err) {
				return models.NewFieldError("is_unique", "Existing values of this profile are not unique.")
			}
			if err != nil {
				return wrapWrite("mark profile values unique", err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	cache.InvalidateCatalog(ctx)
	r.log.LogUpdate(ctx, map[string]any{"id": profile.ID})
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "profiles")()

	// Children are removed explicitly so the outcome does not depend on the
	// driver enforcing ON DELETE CASCADE.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.SelectOption{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Profile{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Profile", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateCatalog(ctx)
	r.log.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

func (r *profileRepository) AddOption(ctx context.Context, profileID uint, key string) (*models.SelectOption, error) {
	defer observability.TrackQuery("create", "select_options")()

	option := &models.SelectOption{ProfileID: profileID, Key: key}
	if err := r.db.WithContext(ctx).Create(option).Error; err != nil {
		r.log.LogError(ctx, err, "create option")
		return nil, wrapWrite("create select option", err)
	}
	cache.InvalidateCatalog(ctx)
	return option, nil
}

func (r *profileRepository) DeleteOption(ctx context.Context, profileID, optionID uint) error {
	defer observability.TrackQuery("delete", "select_options")()

	res := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Delete(&models.SelectOption{}, optionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Option", optionID)
	}
	cache.InvalidateCatalog(ctx)
	return nil
}
