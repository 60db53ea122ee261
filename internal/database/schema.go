package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hrdesk/internal/config"
	"hrdesk/internal/models"
	"hrdesk/internal/observability"

	"gorm.io/gorm"
)

// Schema modes.
const (
	SchemaModeSQL  = "sql"
	SchemaModeAuto = "auto"
)

// PersistentModels lists every model managed by AutoMigrate, parents first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.SelectOption{},
		&models.ProfileValue{},
	}
}

// ApplySchema brings the schema up to date: embedded SQL migrations in sql
// mode, GORM AutoMigrate in auto mode.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	switch mode {
	case SchemaModeSQL:
		observability.GlobalLogger.InfoContext(ctx, "Running SQL migrations")
		if err := MigrateUp(cfg); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	case SchemaModeAuto, "":
		observability.GlobalLogger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	default:
		return fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return nil
}
