package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart file header carrying content.
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

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"jdoe42":        "jdoe42",
		"Jöhn Doe_42":   "john-doe-42",
		"  Élodie  ":    "elodie",
		"a--b":          "a-b",
		"日本":            "",
		"Ünïcödé Çase!": "unicode-case",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slugify(in))
		})
	}
}

func TestKey(t *testing.T) {
	pattern := regexp.MustCompile(`^uploads/users/jdoe42-[0-9a-f-]{36}\.pdf$`)
	a := Key("jdoe42", "CV.PDF")
	b := Key("jdoe42", "CV.PDF")
	assert.Regexp(t, pattern, a)
	assert.NotEqual(t, a, b, "two uploads by the same user never collide")

	assert.Regexp(t, `^uploads/users/user-[0-9a-f-]{36}$`, Key("日本", "noext"))
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "http://localhost:8375/")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "uploads/users/a.txt", bytes.NewReader([]byte("hello")), 5, "text/plain"))
	got, err := os.ReadFile(filepath.Join(root, "uploads", "users", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	assert.Equal(t, "http://localhost:8375/uploads/users/a.txt", store.URL("uploads/users/a.txt"))

	require.NoError(t, store.Delete(ctx, "uploads/users/a.txt"))
	_, err = os.Stat(filepath.Join(root, "uploads", "users", "a.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "uploads/users/a.txt"), "deleting twice is fine")

	assert.Error(t, store.Put(ctx, "../escape.txt", bytes.NewReader(nil), 0, ""))
}

func TestAttachments_Attach(t *testing.T) {
	root := t.TempDir()
	att := NewAttachments(NewLocalStore(root, "http://files.test"))
	ctx := context.Background()

	key, err := att.Attach(ctx, "jdoe42", fileHeader(t, "cv", "resume.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/users/jdoe42-.*\.pdf$`, key)

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))
	assert.Equal(t, "http://files.test/"+key, att.URL(key))

	require.NoError(t, att.Remove(ctx, key))
}

func TestAttachments_NoFile(t *testing.T) {
	att := NewAttachments(NewLocalStore(t.TempDir(), ""))
	key, err := att.Attach(context.Background(), "jdoe42", nil)
	assert.NoError(t, err)
	assert.Empty(t, key)
}

func TestS3Store_URL(t *testing.T) {
	aws := NewS3StoreWithClient(nil, S3Options{Bucket: "hr", Region: "eu-west-3"})
	assert.Equal(t, "https://hr.s3.eu-west-3.amazonaws.com/uploads/users/a.pdf", aws.URL("uploads/users/a.pdf"))
	assert.Equal(t, "s3", aws.Driver())

	minio := NewS3StoreWithClient(nil, S3Options{Bucket: "hr", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/hr/uploads/users/a.pdf", minio.URL("uploads/users/a.pdf"))
}
