// Package storage persists uploaded profile attachments.
package storage

import (
	"context"
	"io"
)

// UploadDir is the namespace every user attachment is stored under.
const UploadDir = "uploads/users"

// Store is a flat key/object store. Keys are slash-separated relative paths.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns the absolute address a client can fetch key from.
	URL(key string) string
	Driver() string
}
