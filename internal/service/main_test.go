package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/models"
	"hrdesk/internal/repository"
	"hrdesk/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	root     string
	users    *UserService
	profiles *ProfileService
	catalog  map[string]models.Profile
}

func float(f float64) *float64 { return &f }

// newFixture wires both services over an in-memory database, a temp upload
// root and no cache, then seeds a small catalog.
func newFixture(t *testing.T, emptyMode string) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(":memory:")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	root := t.TempDir()
	profileRepo := repository.NewProfileRepository(db, 0)
	f := &fixture{
		db:   db,
		root: root,
		users: NewUserService(UserServiceDeps{
			Transactor:     repository.NewTransactor(db),
			Users:          repository.NewUserRepository(db),
			Profiles:       profileRepo,
			Values:         repository.NewProfileValueRepository(db),
			Files:          storage.NewAttachments(storage.NewLocalStore(root, "http://files.test")),
			EmptyValueMode: emptyMode,
		}),
		profiles: NewProfileService(profileRepo),
		catalog:  map[string]models.Profile{},
	}

	ctx := context.Background()
	for _, in := range []ProfileInput{
		{Slug: "department", Type: "select", IsRequired: true, Options: []string{"sales", "engineering"}},
		{Slug: "cv", Type: "file"},
		{Slug: "employee_id", Type: "text", IsUnique: true, Max: float(20)},
		{Slug: "age", Type: "number", Min: float(18), Max: float(99)},
	} {
		p, err := f.profiles.Create(ctx, in)
		require.NoError(t, err)
		f.catalog[p.Slug] = *p
	}
	return f
}

func newDefaultFixture(t *testing.T) *fixture {
	return newFixture(t, config.EmptyValueIgnore)
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func fileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}
