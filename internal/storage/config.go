package storage

import (
	"context"
	"fmt"
	"strings"

	"hrdesk/internal/config"
)

// NewFromConfig builds the Store selected by STORAGE_DRIVER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.StorageRoot, strings.TrimRight(cfg.PublicBaseURL, "/")), nil
	case "s3":
		store, err := NewS3Store(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
