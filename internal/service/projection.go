// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"encoding/json"
	"time"

	"hrdesk/internal/models"
)

// Projection is the complete view of one user: the core fields plus exactly
// one attribute per catalog slug, nil when the user has no value for it.
type Projection struct {
	ID         uint
	Login      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Attributes map[string]*string
}

// MarshalJSON flattens the attributes next to the core fields.
func (p Projection) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Attributes)+4)
	for slug, v := range p.Attributes {
		if v == nil {
			out[slug] = nil
			continue
		}
		out[slug] = *v
	}
	out["id"] = p.ID
	out["login"] = p.Login
	out["created_at"] = p.CreatedAt
	out["updated_at"] = p.UpdatedAt
	return json.Marshal(out)
}

// Attribute returns the display value of slug and whether it is set.
func (p Projection) Attribute(slug string) (string, bool) {
	v, ok := p.Attributes[slug]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// BuildProjection merges stored values (profile id to stored value) with the
// full catalog. File values go through urlFor.
func BuildProjection(user models.User, catalog []models.Profile, values map[uint]string, urlFor func(string) string) Projection {
	attrs := make(map[string]*string, len(catalog))
	for _, p := range catalog {
		v, ok := values[p.ID]
		if !ok {
			attrs[p.Slug] = nil
			continue
		}
		if p.Type == models.ProfileTypeFile && urlFor != nil {
			v = urlFor(v)
		}
		attrs[p.Slug] = &v
	}
	return Projection{
		ID:         user.ID,
		Login:      user.Login,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
		Attributes: attrs,
	}
}
