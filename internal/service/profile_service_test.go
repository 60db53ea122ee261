package service

import (
	"context"
	"testing"

	"hrdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_CreateValidates(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    ProfileInput
		field string
	}{
		{"missing slug", ProfileInput{Type: "text"}, "slug"},
		{"bad slug", ProfileInput{Slug: "Has Space", Type: "text"}, "slug"},
		{"reserved slug", ProfileInput{Slug: "login", Type: "text"}, "slug"},
		{"unknown type", ProfileInput{Slug: "color", Type: "colour"}, "type"},
		{"min above max", ProfileInput{Slug: "score", Type: "number", Min: float(10), Max: float(1)}, "min"},
		{"duplicate options", ProfileInput{Slug: "size", Type: "select", Options: []string{"s", "s"}}, "options"},
		{"taken slug", ProfileInput{Slug: "department", Type: "text"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.profiles.Create(ctx, tt.in)
			v := violations(t, err)
			assert.Contains(t, v, tt.field)
		})
	}
}

func TestProfileService_CreateSelectKeepsOptions(t *testing.T) {
	f := newDefaultFixture(t)

	p, err := f.profiles.Create(context.Background(), ProfileInput{
		Slug: "shirt_size", Type: " Select ", Options: []string{"s", " m ", "l"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProfileTypeSelect, p.Type)
	assert.Equal(t, []string{"s", "m", "l"}, p.OptionKeys())

	text, err := f.profiles.Create(context.Background(), ProfileInput{
		Slug: "nickname", Type: "text", Options: []string{"ignored"},
	})
	require.NoError(t, err)
	assert.Empty(t, text.Options)
}

func TestProfileService_ZeroBoundsAreUnset(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	_, err := f.profiles.Create(ctx, ProfileInput{Slug: "nickname", Type: "text", Min: float(3), Max: float(0)})
	require.NoError(t, err)

	p, err := f.users.Create(ctx, input(map[string]string{
		"login": "jdoe42", "password": "secret", "department": "sales", "nickname": "jd the great",
	}))
	require.NoError(t, err)
	nick, _ := p.Attribute("nickname")
	assert.Equal(t, "jd the great", nick)

	_, err = f.users.Create(ctx, input(map[string]string{
		"login": "other", "password": "secret", "department": "sales", "nickname": "jd",
	}))
	v := violations(t, err)
	assert.Equal(t, []string{"The nickname must be at least 3 characters."}, v["nickname"])
}

func TestProfileService_UpdateToggleUnique(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	for _, login := range []string{"alice", "bob"} {
		_, err := f.users.Create(ctx, input(map[string]string{
			"login": login, "password": "secret", "department": "sales",
		}))
		require.NoError(t, err)
	}

	dept := f.catalog["department"]
	_, err := f.profiles.Update(ctx, dept.ID, ProfileInput{
		Slug: "department", Type: "select", IsRequired: true, IsUnique: true,
	})
	v := violations(t, err)
	assert.Contains(t, v, "is_unique")

	updated, err := f.profiles.Update(ctx, dept.ID, ProfileInput{
		Slug: "team", Type: "select", IsRequired: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "team", updated.Slug)
	assert.Equal(t, []string{"sales", "engineering"}, updated.OptionKeys(), "options survive an update")
}

func TestProfileService_Options(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()
	dept := f.catalog["department"]

	opt, err := f.profiles.AddOption(ctx, dept.ID, OptionInput{Key: " marketing "})
	require.NoError(t, err)
	assert.Equal(t, "marketing", opt.Key)

	_, err = f.profiles.AddOption(ctx, dept.ID, OptionInput{Key: "sales"})
	v := violations(t, err)
	assert.Equal(t, []string{"The key has already been taken."}, v["key"])

	_, err = f.profiles.AddOption(ctx, f.catalog["age"].ID, OptionInput{Key: "x"})
	v = violations(t, err)
	assert.Contains(t, v, "key")

	require.NoError(t, f.profiles.DeleteOption(ctx, dept.ID, opt.ID))
	err = f.profiles.DeleteOption(ctx, dept.ID, opt.ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}

func TestProfileService_DeleteDropsValues(t *testing.T) {
	f := newDefaultFixture(t)
	ctx := context.Background()

	created, err := f.users.Create(ctx, input(map[string]string{
		"login": "jdoe42", "password": "secret", "department": "sales", "age": "30",
	}))
	require.NoError(t, err)

	require.NoError(t, f.profiles.Delete(ctx, f.catalog["age"].ID))

	p, err := f.users.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.NotContains(t, p.Attributes, "age")
	assert.EqualValues(t, 1, f.count(t, &models.ProfileValue{}))

	err = f.profiles.Delete(ctx, f.catalog["age"].ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))

	_, err = f.profiles.Get(ctx, f.catalog["age"].ID)
	assert.True(t, models.IsKind(err, models.KindNotFound))
}
