package validation

import (
	"hrdesk/internal/models"

	"github.com/shopspring/decimal"
)

// Names of the core user fields.
const (
	FieldLogin    = "login"
	FieldPassword = "password"
)

// PasswordMaxBytes is the longest password bcrypt accepts.
const PasswordMaxBytes = 72

// FieldRules is the ordered rule list of one field.
type FieldRules struct {
	Field string
	Rules []Rule
}

// Build maps a profile definition to its ordered rule list.
func Build(p models.Profile) []Rule {
	rules := make([]Rule, 0, 5)
	if p.IsRequired {
		rules = append(rules, Required{})
	} else {
		rules = append(rules, Nullable{})
	}

	if p.IsUnique {
		rules = append(rules, Unique{ProfileID: p.ID})
	}

	kind := sizeKindFor(p.Type)
	if lo, ok := p.MinBound(); ok {
		rules = append(rules, Min{Kind: kind, Bound: decimal.NewFromFloat(lo)})
	}
	if hi, ok := p.MaxBound(); ok {
		rules = append(rules, Max{Kind: kind, Bound: decimal.NewFromFloat(hi)})
	}

	switch p.Type {
	case models.ProfileTypeSelect:
		rules = append(rules, OneOf{Keys: p.OptionKeys()})
	case models.ProfileTypeEmail, models.ProfileTypeURL, models.ProfileTypeNumber,
		models.ProfileTypeDate, models.ProfileTypeFile:
		rules = append(rules, TypeCheck{Type: p.Type})
	}
	return rules
}

func sizeKindFor(t models.ProfileType) SizeKind {
	switch t {
	case models.ProfileTypeNumber:
		return SizeNumeric
	case models.ProfileTypeFile:
		return SizeKilobytes
	default:
		return SizeLength
	}
}

// UserRules returns the rules of the core user fields. The password is
// only required on create.
func UserRules(creating bool) []FieldRules {
	password := []Rule{Nullable{}, MaxBytes{Bound: PasswordMaxBytes}}
	if creating {
		password[0] = Required{}
	}
	loginMax := Max{Kind: SizeLength, Bound: decimal.NewFromInt(models.LoginMaxLength)}
	return []FieldRules{
		{Field: FieldLogin, Rules: []Rule{Required{}, AlphaNum{}, loginMax, UniqueLogin{}}},
		{Field: FieldPassword, Rules: password},
	}
}

// RuleSet returns the core user rules followed by one entry per catalog
// profile, in catalog order.
func RuleSet(catalog []models.Profile, creating bool) []FieldRules {
	set := UserRules(creating)
	for _, p := range catalog {
		set = append(set, FieldRules{Field: p.Slug, Rules: Build(p)})
	}
	return set
}
