package service

import (
	"context"
	"log"

	"ar-model-dashboard/models"
)

// CatalogService fetches catalog pages and normalizes them into the canonical model
// Implements CatalogServiceInterface
type CatalogService struct {
	source      CatalogSourceInterface
	assetOrigin string
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(source CatalogSourceInterface, assetOrigin string) *CatalogService {
	return &CatalogService{
		source:      source,
		assetOrigin: assetOrigin,
	}
}

// Ensure CatalogService implements CatalogServiceInterface
var _ CatalogServiceInterface = (*CatalogService)(nil)

// GetCatalog returns one normalized catalog page
func (s *CatalogService) GetCatalog(ctx context.Context, page, pageSize int) (models.CatalogPage, error) {
	body, err := s.source.FetchPage(ctx, page, pageSize)
	if err != nil {
		return models.CatalogPage{}, err
	}

	catalog, err := NormalizeCatalogPage(body, s.assetOrigin)
	if err != nil {
		return models.CatalogPage{}, err
	}

	log.Printf("📦 Catalog page %d normalized: %d groups, %d variants", page, len(catalog.Data), catalog.VariantCount())
	return catalog, nil
}
