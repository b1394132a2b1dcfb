package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinic-booking/core/internal/model"
	"github.com/clinic-booking/core/internal/repository"
)

// DefaultServices seeds an empty catalog.
var DefaultServices = []model.Service{
	{Name: "Consulta", Description: "Consulta de avaliação", Category: "consulta", Price: 150, DurationMinutes: 30},
	{Name: "Limpeza", Description: "Limpeza e profilaxia", Category: "preventivo", Price: 200, DurationMinutes: 60},
	{Name: "Clareamento", Description: "Clareamento dental", Category: "estetica", Price: 800, DurationMinutes: 90},
	{Name: "Retorno", Description: "Consulta de retorno", Category: "consulta", Price: 0, DurationMinutes: 30},
}

// CatalogService is the read side of the service catalog.
type CatalogService struct {
	store *repository.Store
	log   *zap.Logger
}

func NewCatalogService(store *repository.Store, log *zap.Logger) *CatalogService {
	return &CatalogService{store: store, log: log}
}

func (s *CatalogService) ListActive(ctx context.Context) ([]model.Service, error) {
	services, _, err := s.store.Services.List(ctx, true, 0, 0)
	if err != nil {
		return nil, translate("list services", err)
	}
	return services, nil
}

// SeedDefaults fills the catalog when it has no rows at all.
func (s *CatalogService) SeedDefaults(ctx context.Context) error {
	_, total, err := s.store.Services.List(ctx, false, 1, 0)
	if err != nil {
		return translate("count services", err)
	}
	if total > 0 {
		return nil
	}

	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		for _, def := range DefaultServices {
			svc := def
			svc.Active = true
			if err := repos.Services.Create(ctx, &svc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate("seed services", err)
	}

	s.log.Info("service catalog seeded", zap.Int("services", len(DefaultServices)))
	return nil
}
