package validation

import (
	"context"

	"hrdesk/internal/models"
	"hrdesk/internal/observability"
)

// Validator evaluates submissions against the catalog-derived rule set.
type Validator struct {
	lookup Lookup
}

// New returns a Validator that answers uniqueness questions through lookup.
func New(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate checks in against the core user rules and every catalog profile.
// userID is the user being updated, zero on create. Every field is checked;
// the result is a ValidationFailed AppError listing all violations, an
// internal error when a lookup fails, or nil.
func (v *Validator) Validate(ctx context.Context, catalog []models.Profile, in Input, userID uint) error {
	span, ctx := observability.NewSpan(ctx, "validation.Validate")
	defer span.End()

	violations, err := v.Evaluate(ctx, RuleSet(catalog, userID == 0), in, userID)
	if err != nil {
		span.SetError(err)
		return models.NewInternalError(err)
	}
	if !violations.Empty() {
		observability.RecordViolations(violations.Fields())
		return models.NewValidationFailed(violations)
	}
	return nil
}

// Evaluate runs set against in and returns the collected violations.
func (v *Validator) Evaluate(ctx context.Context, set []FieldRules, in Input, userID uint) (models.Violations, error) {
	env := Env{Lookup: v.lookup, UserID: userID}
	violations := models.Violations{}

	for _, fr := range set {
		f := in.Field(fr.Field)
		for _, rule := range fr.Rules {
			if _, ok := rule.(implicit); f.Empty() && !ok {
				continue
			}
			msg, err := rule.Check(ctx, env, f)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				violations.Add(fr.Field, msg)
			}
		}
	}
	return violations, nil
}
