package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"hrdesk/internal/models"
	"hrdesk/internal/repository"
	"hrdesk/internal/validation"
)

var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Keys that a profile slug may not shadow in the flattened projection.
var reservedSlugs = map[string]bool{
	"id":                     true,
	validation.FieldLogin:    true,
	validation.FieldPassword: true,
	"created_at":             true,
	"updated_at":             true,
}

// ProfileInput is the admin payload for creating or replacing a profile.
type ProfileInput struct {
	Slug       string   `json:"slug" validate:"required,max=64"`
	Type       string   `json:"type" validate:"required"`
	IsRequired bool     `json:"is_required"`
	IsUnique   bool     `json:"is_unique"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	Options    []string `json:"options" validate:"omitempty,unique,dive,required,max=191"`
}

// OptionInput is the admin payload for adding a select option.
type OptionInput struct {
	Key string `json:"key" validate:"required,max=191"`
}

// ProfileService administers the profile catalog.
type ProfileService struct {
	profiles repository.ProfileRepository
}

func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *ProfileService) Get(ctx context.Context, id uint) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// Create adds a profile; options are only kept for select profiles.
func (s *ProfileService) Create(ctx context.Context, in ProfileInput) (*models.Profile, error) {
	profile, err := in.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, slugConflict(err)
	}
	return s.profiles.GetByID(ctx, profile.ID)
}

// Update replaces the scalar fields of profile id. Options are managed
// through AddOption and DeleteOption.
func (s *ProfileService) Update(ctx context.Context, id uint, in ProfileInput) (*models.Profile, error) {
	if _, err := s.profiles.GetByID(ctx, id); err != nil {
		return nil, err
	}
	profile, err := in.toModel()
	if err != nil {
		return nil, err
	}
	profile.ID = id
	profile.Options = nil
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, slugConflict(err)
	}
	return s.profiles.GetByID(ctx, id)
}

// Delete removes profile id together with every stored value of it.
func (s *ProfileService) Delete(ctx context.Context, id uint) error {
	return s.profiles.Delete(ctx, id)
}

func (s *ProfileService) AddOption(ctx context.Context, profileID uint, in OptionInput) (*models.SelectOption, error) {
	in.Key = strings.TrimSpace(in.Key)
	if v := validation.Struct(in); !v.Empty() {
		return nil, models.NewValidationFailed(v)
	}
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.Type != models.ProfileTypeSelect {
		return nil, models.NewFieldError("key", "Options can only be added to select profiles.")
	}
	option, err := s.profiles.AddOption(ctx, profileID, in.Key)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewFieldError("key", "The key has already been taken.")
		}
		return nil, err
	}
	return option, nil
}

func (s *ProfileService) DeleteOption(ctx context.Context, profileID, optionID uint) error {
	return s.profiles.DeleteOption(ctx, profileID, optionID)
}

func (in ProfileInput) toModel() (*models.Profile, error) {
	in.Slug = strings.TrimSpace(in.Slug)
	for i := range in.Options {
		in.Options[i] = strings.TrimSpace(in.Options[i])
	}

	violations := validation.Struct(in)
	if in.Slug != "" && !slugPattern.MatchString(in.Slug) {
		violations.Add("slug", "The slug may only contain lowercase letters, digits and underscores, and must start with a letter.")
	}
	if reservedSlugs[in.Slug] {
		violations.Add("slug", "The slug is reserved.")
	}
	t, ok := models.ParseProfileType(in.Type)
	if in.Type != "" && !ok {
		violations.Add("type", "The selected type is invalid.")
	}
	bounds := models.Profile{Min: in.Min, Max: in.Max}
	lo, hasMin := bounds.MinBound()
	hi, hasMax := bounds.MaxBound()
	if hasMin && hasMax && lo > hi {
		violations.Add("min", "The min may not be greater than max.")
	}
	if !violations.Empty() {
		return nil, models.NewValidationFailed(violations)
	}

	profile := &models.Profile{
		Slug:       in.Slug,
		Type:       t,
		IsRequired: in.IsRequired,
		IsUnique:   in.IsUnique,
		Min:        in.Min,
		Max:        in.Max,
	}
	if t == models.ProfileTypeSelect {
		for _, key := range in.Options {
			profile.Options = append(profile.Options, models.SelectOption{Key: key})
		}
	}
	return profile, nil
}

func slugConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return models.NewFieldError("slug", "The slug has already been taken.")
	}
	return err
}
