// Package seed loads profile catalogs and demo users for development and testing.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log"

	"hrdesk/internal/models"
	"hrdesk/internal/service"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yml
var defaultCatalog []byte

// ProfileDef is one profile entry of a catalog file.
type ProfileDef struct {
	Slug     string   `yaml:"slug"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Unique   bool     `yaml:"unique"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`
	Options  []string `yaml:"options"`
}

// CatalogFile is the document layout of a catalog file.
type CatalogFile struct {
	Profiles []ProfileDef `yaml:"profiles"`
}

// LoadCatalog decodes a catalog document. Unknown keys are rejected.
func LoadCatalog(r io.Reader) ([]ProfileDef, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc CatalogFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return doc.Profiles, nil
}

// DefaultCatalog returns the catalog bundled with the binary.
func DefaultCatalog() ([]ProfileDef, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalog))
}

func (d ProfileDef) input() service.ProfileInput {
	return service.ProfileInput{
		Slug:       d.Slug,
		Type:       d.Type,
		IsRequired: d.Required,
		IsUnique:   d.Unique,
		Min:        d.Min,
		Max:        d.Max,
		Options:    d.Options,
	}
}

// ApplyCatalog creates every profile of defs whose slug does not exist yet.
// Existing profiles are left untouched. It returns the number created.
func ApplyCatalog(ctx context.Context, profiles *service.ProfileService, defs []ProfileDef) (int, error) {
	existing, err := profiles.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[p.Slug] = true
	}

	created := 0
	for _, d := range defs {
		if known[d.Slug] {
			log.Printf("profile %q exists, skipping", d.Slug)
			continue
		}
		if _, err := profiles.Create(ctx, d.input()); err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Fields != nil {
				return created, fmt.Errorf("profile %q: %v", d.Slug, appErr.Fields)
			}
			return created, fmt.Errorf("profile %q: %w", d.Slug, err)
		}
		known[d.Slug] = true
		created++
	}
	return created, nil
}
