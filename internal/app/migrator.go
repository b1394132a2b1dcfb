package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
	"github.com/clinic-booking/core/internal/service"
)

// Migrate brings the schema up to date and seeds an empty service catalog.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("schema migrated")

	catalog := service.NewCatalogService(repository.NewStore(db), log)
	if err := catalog.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed services: %w", err)
	}
	return nil
}
