package repository

import (
	"context"
	"errors"

	"hrdesk/internal/models"
	"hrdesk/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error)
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx, log: r.log}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("get", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return wrapWrite("create user", err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": user.ID, "login": user.Login})
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()

	err := r.db.WithContext(ctx).Model(user).
		Select("login", "password", "updated_at").
		Updates(user).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return wrapWrite("update user", err)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": user.ID})
	return nil
}

// LoginTaken reports whether another user already owns login.
func (r *userRepository) LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error) {
	defer observability.TrackQuery("count", "users")()

	q := r.db.WithContext(ctx).Model(&models.User{}).Where("login = ?", login)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
