package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"hrdesk/internal/observability"

	"github.com/google/uuid"
)

// Attachments turns uploaded files into stored objects referenced by
// relative path.
type Attachments struct {
	store Store
}

// NewAttachments returns an Attachments writing to store.
func NewAttachments(store Store) *Attachments {
	return &Attachments{store: store}
}

// Key builds the storage path of a new upload for login.
func Key(login, filename string) string {
	prefix := Slugify(login)
	if prefix == "" {
		prefix = "user"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(UploadDir, prefix+"-"+uuid.NewString()+ext)
}

// Attach stores fh for login and returns its relative path. A nil or
// unreadable file yields "" and no error: the field counts as not supplied.
func (a *Attachments) Attach(ctx context.Context, login string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		observability.GlobalLogger.WarnContext(ctx, "uploaded file unreadable, skipping",
			slog.String("filename", fh.Filename), slog.String("error", err.Error()))
		return "", nil
	}
	defer src.Close()

	key := Key(login, fh.Filename)
	if err := a.store.Put(ctx, key, src, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("store attachment: %w", err)
	}
	observability.AttachmentsStored.WithLabelValues(a.store.Driver()).Inc()
	return key, nil
}

// Remove deletes a stored attachment.
func (a *Attachments) Remove(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

// URL renders a stored relative path as an absolute URL.
func (a *Attachments) URL(key string) string {
	return a.store.URL(key)
}
