package validation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"hrdesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Lookup answers the cross-record questions the uniqueness rules ask.
type Lookup interface {
	ValueTaken(ctx context.Context, profileID uint, value string, excludeUserID uint) (bool, error)
	LoginTaken(ctx context.Context, login string, excludeUserID uint) (bool, error)
}

// Env is the evaluation context shared by every rule of one submission.
type Env struct {
	Lookup Lookup
	// UserID is the user being updated; zero on create.
	UserID uint
}

// Rule is one constraint on one field. Check returns the violation message,
// or "" when the field passes. A non-nil error aborts the whole validation.
type Rule interface {
	Check(ctx context.Context, env Env, f Field) (string, error)
}

// implicit rules also run against empty fields.
type implicit interface {
	implicit()
}

// Required rejects an empty field.
type Required struct{}

func (Required) implicit() {}

func (Required) Check(_ context.Context, _ Env, f Field) (string, error) {
	if f.Empty() {
		return fmt.Sprintf("The %s field is required.", label(f.Name)), nil
	}
	return "", nil
}

// Nullable marks a field that may be empty.
type Nullable struct{}

func (Nullable) Check(context.Context, Env, Field) (string, error) { return "", nil }

// Unique rejects a value another user already stores for the profile.
type Unique struct {
	ProfileID uint
}

func (r Unique) Check(ctx context.Context, env Env, f Field) (string, error) {
	if f.File != nil {
		return "", nil
	}
	taken, err := env.Lookup.ValueTaken(ctx, r.ProfileID, f.Value, env.UserID)
	if err != nil {
		return "", fmt.Errorf("unique check on %s: %w", f.Name, err)
	}
	if taken {
		return f.Name + " must be unique", nil
	}
	return "", nil
}

// SizeKind selects what min and max measure.
type SizeKind int

const (
	SizeLength SizeKind = iota
	SizeNumeric
	SizeKilobytes
)

func sizeOf(kind SizeKind, f Field) (decimal.Decimal, bool) {
	switch kind {
	case SizeNumeric:
		d, err := decimal.NewFromString(f.Value)
		return d, err == nil
	case SizeKilobytes:
		if f.File == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(f.File.Size).Div(decimal.NewFromInt(1024)), true
	default:
		return decimal.NewFromInt(int64(utf8.RuneCountInString(f.Value))), true
	}
}

func sizeUnit(kind SizeKind) string {
	switch kind {
	case SizeKilobytes:
		return " kilobytes"
	case SizeLength:
		return " characters"
	default:
		return ""
	}
}

// Min enforces a lower bound. Values that cannot be measured are left to
// the type check.
type Min struct {
	Kind  SizeKind
	Bound decimal.Decimal
}

func (r Min) Check(_ context.Context, _ Env, f Field) (string, error) {
	size, ok := sizeOf(r.Kind, f)
	if ok && size.LessThan(r.Bound) {
		return fmt.Sprintf("The %s must be at least %s%s.", label(f.Name), r.Bound.String(), sizeUnit(r.Kind)), nil
	}
	return "", nil
}

// Max enforces an upper bound.
type Max struct {
	Kind  SizeKind
	Bound decimal.Decimal
}

func (r Max) Check(_ context.Context, _ Env, f Field) (string, error) {
	size, ok := sizeOf(r.Kind, f)
	if ok && size.GreaterThan(r.Bound) {
		return fmt.Sprintf("The %s may not be greater than %s%s.", label(f.Name), r.Bound.String(), sizeUnit(r.Kind)), nil
	}
	return "", nil
}

// OneOf restricts a select field to its option keys.
type OneOf struct {
	Keys []string
}

func (r OneOf) Check(_ context.Context, _ Env, f Field) (string, error) {
	if f.File != nil || !slices.Contains(r.Keys, f.Value) {
		return fmt.Sprintf("The selected %s is invalid.", label(f.Name)), nil
	}
	return "", nil
}

// DateLayouts are the accepted date formats.
var DateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// TypeCheck enforces the well-formedness of a typed profile value.
type TypeCheck struct {
	Type models.ProfileType
}

func (r TypeCheck) Check(_ context.Context, _ Env, f Field) (string, error) {
	name := label(f.Name)
	if r.Type == models.ProfileTypeFile {
		if f.File == nil {
			return fmt.Sprintf("The %s must be a file.", name), nil
		}
		return "", nil
	}
	if f.File != nil {
		return fmt.Sprintf("The %s must be a string.", name), nil
	}

	switch r.Type {
	case models.ProfileTypeEmail:
		if validate.Var(f.Value, "email") != nil {
			return fmt.Sprintf("The %s must be a valid email address.", name), nil
		}
	case models.ProfileTypeURL:
		if validate.Var(f.Value, "url") != nil {
			return fmt.Sprintf("The %s format is invalid.", name), nil
		}
	case models.ProfileTypeNumber:
		if validate.Var(f.Value, "numeric") != nil {
			return fmt.Sprintf("The %s must be a number.", name), nil
		}
	case models.ProfileTypeDate:
		if !isDate(f.Value) {
			return fmt.Sprintf("The %s is not a valid date.", name), nil
		}
	}
	return "", nil
}

func isDate(s string) bool {
	for _, layout := range DateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// AlphaNum allows letters and digits only.
type AlphaNum struct{}

func (AlphaNum) Check(_ context.Context, _ Env, f Field) (string, error) {
	if validate.Var(f.Value, "alphanumunicode") != nil {
		return fmt.Sprintf("The %s may only contain letters and numbers.", label(f.Name)), nil
	}
	return "", nil
}

// MaxBytes caps the encoded size of a value.
type MaxBytes struct {
	Bound int
}

func (r MaxBytes) Check(_ context.Context, _ Env, f Field) (string, error) {
	if len(f.Value) > r.Bound {
		return fmt.Sprintf("The %s may not be greater than %d bytes.", label(f.Name), r.Bound), nil
	}
	return "", nil
}

// UniqueLogin rejects a login owned by another user.
type UniqueLogin struct{}

func (UniqueLogin) Check(ctx context.Context, env Env, f Field) (string, error) {
	taken, err := env.Lookup.LoginTaken(ctx, f.Value, env.UserID)
	if err != nil {
		return "", fmt.Errorf("unique check on %s: %w", f.Name, err)
	}
	if taken {
		return fmt.Sprintf("The %s has already been taken.", label(f.Name)), nil
	}
	return "", nil
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
