package cache

import (
	"context"
	"log/slog"

	"hrdesk/internal/observability"
)

// CatalogKey holds the serialized profile catalog.
const CatalogKey = "profiles:catalog"

// Invalidate deletes key, logging instead of failing.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "cache invalidation failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// InvalidateCatalog drops the cached profile catalog.
func InvalidateCatalog(ctx context.Context) {
	Invalidate(ctx, CatalogKey)
}
