package service

import (
	"context"
	"errors"
	"log/slog"

	"hrdesk/internal/config"
	"hrdesk/internal/models"
	"hrdesk/internal/observability"
	"hrdesk/internal/repository"
	"hrdesk/internal/storage"
	"hrdesk/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService reads and writes users together with their profile values.
type UserService struct {
	tx        repository.Transactor
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	values    repository.ProfileValueRepository
	validator *validation.Validator
	files     *storage.Attachments
	emptyMode string
}

// UserServiceDeps groups the collaborators of a UserService.
type UserServiceDeps struct {
	Transactor repository.Transactor
	Users      repository.UserRepository
	Profiles   repository.ProfileRepository
	Values     repository.ProfileValueRepository
	Files      *storage.Attachments
	// EmptyValueMode is config.EmptyValueIgnore (default) or config.EmptyValueClear.
	EmptyValueMode string
}

func NewUserService(deps UserServiceDeps) *UserService {
	mode := deps.EmptyValueMode
	if mode == "" {
		mode = config.EmptyValueIgnore
	}
	return &UserService{
		tx:        deps.Transactor,
		users:     deps.Users,
		profiles:  deps.Profiles,
		values:    deps.Values,
		validator: validation.New(lookup{users: deps.Users, values: deps.Values}),
		files:     deps.Files,
		emptyMode: mode,
	}
}

// lookup answers uniqueness questions straight from storage, never from cache.
type lookup struct {
	users  repository.UserRepository
	values repository.ProfileValueRepository
}

func (l lookup) ValueTaken(ctx context.Context, profileID uint, value string, excludeUserID uint) (bool, error) {
	return l.values.ValueTaken(ctx, profileID, value, excludeUserID)
}

func (l lookup) LoginTaken(ctx context.Context, login string, excludeUserID uint) (bool, error) {
	return l.users.LoginTaken(ctx, login, excludeUserID)
}

// GetUser returns the projection of user id.
func (s *UserService) GetUser(ctx context.Context, id uint) (*Projection, error) {
	span, ctx := observability.NewSpan(ctx, "UserService.GetUser", attribute.Int("user.id", int(id)))
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.profiles.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.values.ListByUser(ctx, id)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	stored := make(map[uint]string, len(rows))
	for _, r := range rows {
		stored[r.ProfileID] = r.Value
	}
	p := BuildProjection(*user, catalog, stored, s.files.URL)
	return &p, nil
}

// Create validates in against the catalog, then stores the user and every
// non-empty profile value in one transaction.
func (s *UserService) Create(ctx context.Context, in validation.Input) (*Projection, error) {
	span, ctx := observability.NewSpan(ctx, "UserService.Create")
	defer span.End()

	catalog, err := s.profiles.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, catalog, in, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Value(validation.FieldPassword)), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Login: in.Value(validation.FieldLogin), Password: string(hash)}
	written := map[uint]string{}

	var uploaded []string
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users, values := s.users.WithTx(tx), s.values.WithTx(tx)

		if err := users.Create(ctx, user); err != nil {
			return loginConflict(err)
		}

		for _, p := range catalog {
			if !in.Has(p.Slug) {
				continue
			}
			value, err := s.resolve(ctx, p, in, user.Login, &uploaded)
			if err != nil {
				return err
			}
			if value == "" {
				continue
			}
			row := &models.ProfileValue{UserID: user.ID, ProfileID: p.ID}
			row.SetValue(value, p.IsUnique)
			if err := values.Create(ctx, row); err != nil {
				return valueConflict(p, err)
			}
			written[p.ID] = value
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, uploaded)
		span.SetError(err)
		return nil, err
	}

	observability.GlobalLogger.InfoContext(ctx, "user created",
		slog.Uint64("user_id", uint64(user.ID)), slog.Int("values", len(written)))
	p := BuildProjection(*user, catalog, written, s.files.URL)
	return &p, nil
}

// Update validates in against the catalog for user id and applies it:
// supplied values are written, omitted slugs are deleted, and empty values
// are left alone unless the service runs in clear mode.
func (s *UserService) Update(ctx context.Context, id uint, in validation.Input) (*Projection, error) {
	span, ctx := observability.NewSpan(ctx, "UserService.Update", attribute.Int("user.id", int(id)))
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	catalog, err := s.profiles.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ctx, catalog, in, id); err != nil {
		return nil, err
	}

	user.Login = in.Value(validation.FieldLogin)
	if !in.Field(validation.FieldPassword).Empty() {
		pw := in.Value(validation.FieldPassword)
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hash)
	}

	final := map[uint]string{}
	var uploaded, obsolete []string
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users, values := s.users.WithTx(tx), s.values.WithTx(tx)

		if err := users.Update(ctx, user); err != nil {
			return loginConflict(err)
		}

		rows, err := values.ListByUser(ctx, id)
		if err != nil {
			return err
		}
		existing := make(map[uint]*models.ProfileValue, len(rows))
		for i := range rows {
			existing[rows[i].ProfileID] = &rows[i]
		}

		for _, p := range catalog {
			cur := existing[p.ID]

			if !in.Has(p.Slug) {
				if cur != nil {
					if err := values.Delete(ctx, cur); err != nil {
						return err
					}
					obsolete = appendFile(obsolete, p, cur.Value)
				}
				continue
			}

			value, err := s.resolve(ctx, p, in, user.Login, &uploaded)
			if err != nil {
				return err
			}

			if value == "" {
				if cur == nil {
					continue
				}
				if s.emptyMode == config.EmptyValueClear {
					if err := values.Delete(ctx, cur); err != nil {
						return err
					}
					obsolete = appendFile(obsolete, p, cur.Value)
					continue
				}
				final[p.ID] = cur.Value
				continue
			}

			final[p.ID] = value
			if cur == nil {
				row := &models.ProfileValue{UserID: id, ProfileID: p.ID}
				row.SetValue(value, p.IsUnique)
				if err := values.Create(ctx, row); err != nil {
					return valueConflict(p, err)
				}
				continue
			}
			if cur.Value == value && (cur.UniqueValue != nil) == p.IsUnique {
				continue
			}
			previous := cur.Value
			cur.SetValue(value, p.IsUnique)
			if err := values.Update(ctx, cur); err != nil {
				return valueConflict(p, err)
			}
			if previous != value {
				obsolete = appendFile(obsolete, p, previous)
			}
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, uploaded)
		span.SetError(err)
		return nil, err
	}

	// Replaced attachments are only dropped once the new references are committed.
	s.discard(ctx, obsolete)

	p := BuildProjection(*user, catalog, final, s.files.URL)
	return &p, nil
}

// resolve returns the value to store for p: the stored path of an uploaded
// file for file profiles, the submitted text otherwise.
func (s *UserService) resolve(ctx context.Context, p models.Profile, in validation.Input, login string, uploaded *[]string) (string, error) {
	if p.Type != models.ProfileTypeFile {
		return in.Value(p.Slug), nil
	}
	key, err := s.files.Attach(ctx, login, in.File(p.Slug))
	if err != nil {
		return "", err
	}
	if key != "" {
		*uploaded = append(*uploaded, key)
	}
	return key, nil
}

func (s *UserService) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.files.Remove(ctx, key); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "failed to remove attachment",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

func appendFile(keys []string, p models.Profile, value string) []string {
	if p.Type == models.ProfileTypeFile && value != "" {
		return append(keys, value)
	}
	return keys
}

// loginConflict turns a lost race on the login index into a field violation.
func loginConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return models.NewFieldError(validation.FieldLogin, "The login has already been taken.")
	}
	return err
}

// valueConflict turns a lost race on the unique value index into a field violation.
func valueConflict(p models.Profile, err error) error {
	if p.IsUnique && errors.Is(err, repository.ErrDuplicate) {
		return models.NewFieldError(p.Slug, p.Slug+" must be unique")
	}
	return err
}
