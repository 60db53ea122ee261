package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"hrdesk/internal/config"
	"hrdesk/internal/database"
	"hrdesk/internal/middleware"
	"hrdesk/internal/models"
	"hrdesk/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	app  *fiber.App
	db   *gorm.DB
	root string
}

func newTestEnv(t *testing.T) *testEnv {
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
	cfg := &config.Config{
		Env:             "test",
		JWTSecret:       testSecret,
		PublicBaseURL:   "http://localhost:8375",
		StorageDriver:   "local",
		StorageRoot:     root,
		UploadMaxSizeMB: 2,
		EmptyValueMode:  config.EmptyValueIgnore,
	}
	s, err := NewServerWithDeps(cfg, db, nil, storage.NewLocalStore(root, cfg.PublicBaseURL))
	require.NoError(t, err)
	return &testEnv{app: s.App(), db: db, root: root}
}

func (e *testEnv) seedDepartment(t *testing.T) models.Profile {
	t.Helper()
	p := models.Profile{
		Slug:       "department",
		Type:       models.ProfileTypeSelect,
		IsRequired: true,
		Options:    []models.SelectOption{{Key: "eng"}, {Key: "sales"}},
	}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	return req
}

func jsonRequest(method, target string, payload any) *http.Request {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func TestCreateUser_DepartmentScenario(t *testing.T) {
	env := newTestEnv(t)
	env.seedDepartment(t)

	status, body := env.do(t, formRequest(http.MethodPost, "/api/users", url.Values{
		"login": {"jdoe42"}, "password": {"x"}, "department": {"eng"},
	}))
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "jdoe42", body["login"])
	assert.Equal(t, "eng", body["department"])
	assert.NotContains(t, body, "password")

	status, body = env.do(t, formRequest(http.MethodPost, "/api/users", url.Values{
		"login": {"jdoe42"}, "password": {"x"}, "department": {"hr"},
	}))
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, models.CodeValidationFailed, body["code"])
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "department")
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedDepartment(t)

	status, created := env.do(t, jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"login": "jdoe42", "password": "x", "department": "sales",
	}))
	require.Equal(t, http.StatusOK, status, created)

	id := int(created["id"].(float64))
	status, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/users/"+itoa(id), nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["department"], body["department"])
	assert.Equal(t, created["login"], body["login"])
}

func TestGetUser_NotFound(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/users/999", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "404", body["status"])
	assert.Equal(t, models.CodeUserNotFound, body["code"])
	assert.Equal(t, "The user with id 999 was not found", body["message"])
}

func TestGetUser_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID", body["message"])
}

func TestUpdateUser_OmissionDeletes(t *testing.T) {
	env := newTestEnv(t)
	env.seedDepartment(t)
	require.NoError(t, env.db.Create(&models.Profile{Slug: "nickname", Type: models.ProfileTypeText}).Error)

	status, created := env.do(t, jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"login": "jdoe42", "password": "x", "department": "eng", "nickname": "JD",
	}))
	require.Equal(t, http.StatusOK, status, created)
	assert.Equal(t, "JD", created["nickname"])

	target := "/api/users/" + itoa(int(created["id"].(float64)))
	status, updated := env.do(t, formRequest(http.MethodPut, target, url.Values{
		"login": {"jdoe42"}, "department": {"sales"},
	}))
	require.Equal(t, http.StatusOK, status, updated)
	assert.Equal(t, "sales", updated["department"])
	assert.Contains(t, updated, "nickname")
	assert.Nil(t, updated["nickname"])

	// POST is accepted for updates too.
	status, _ = env.do(t, formRequest(http.MethodPost, target, url.Values{
		"login": {"jdoe42"}, "department": {"eng"}, "_method": {"PUT"},
	}))
	assert.Equal(t, http.StatusOK, status)

	status, body := env.do(t, formRequest(http.MethodPut, "/api/users/999", url.Values{
		"login": {"jdoe42"}, "department": {"eng"},
	}))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeUserNotFound, body["code"])
}

func TestCreateUser_MultipartFile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&models.Profile{Slug: "cv", Type: models.ProfileTypeFile}).Error)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("login", "jdoe42"))
	require.NoError(t, w.WriteField("password", "x"))
	part, err := w.CreateFormFile("cv", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, body := env.do(t, req)
	require.Equal(t, http.StatusOK, status, body)

	cv, ok := body["cv"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(cv, "http://localhost:8375/uploads/users/jdoe42-"), cv)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, strings.TrimPrefix(cv, "http://localhost:8375"), nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	content, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 test", string(content))
}

func TestCreateUser_RejectsNestedJSON(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, jsonRequest(http.MethodPost, "/api/users", map[string]any{
		"login": "jdoe42", "password": "x", "department": []string{"eng"},
	}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeBadRequest, body["code"])
}

func TestProfileAdmin(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/api/profiles", nil)
	req.Header.Set("Authorization", adminToken(t, "member"))
	status, _ = env.do(t, req)
	assert.Equal(t, http.StatusForbidden, status)

	req = jsonRequest(http.MethodPost, "/api/profiles", map[string]any{
		"slug": "department", "type": "select", "is_required": true, "options": []string{"eng", "sales"},
	})
	req.Header.Set("Authorization", adminToken(t, middleware.RoleAdmin))
	status, created := env.do(t, req)
	require.Equal(t, http.StatusCreated, status, created)
	assert.Equal(t, "department", created["slug"])
	assert.Len(t, created["options"], 2)

	profileID := itoa(int(created["id"].(float64)))
	req = jsonRequest(http.MethodPost, "/api/profiles/"+profileID+"/options", map[string]any{"key": "hr"})
	req.Header.Set("Authorization", adminToken(t, middleware.RoleAdmin))
	status, option := env.do(t, req)
	require.Equal(t, http.StatusCreated, status, option)

	// The new option is accepted right away.
	status, user := env.do(t, formRequest(http.MethodPost, "/api/users", url.Values{
		"login": {"jdoe42"}, "password": {"x"}, "department": {"hr"},
	}))
	require.Equal(t, http.StatusOK, status, user)

	req = jsonRequest(http.MethodPost, "/api/profiles", map[string]any{"slug": "id", "type": "text"})
	req.Header.Set("Authorization", adminToken(t, middleware.RoleAdmin))
	status, body := env.do(t, req)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["errors"], "slug")

	req = httptest.NewRequest(http.MethodDelete, "/api/profiles/"+profileID, nil)
	req.Header.Set("Authorization", adminToken(t, middleware.RoleAdmin))
	status, _ = env.do(t, req)
	assert.Equal(t, http.StatusNoContent, status)

	status, user = env.do(t, httptest.NewRequest(http.MethodGet, "/api/users/"+itoa(int(user["id"].(float64))), nil))
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, user, "department")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = env.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.CodeNotFound, body["code"])
}
