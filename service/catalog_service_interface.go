package service

import (
	"context"

	"ar-model-dashboard/models"
)

// CatalogSourceInterface fetches raw catalog pages from the upstream backend
type CatalogSourceInterface interface {
	FetchPage(ctx context.Context, page, pageSize int) ([]byte, error)
}

// CatalogServiceInterface defines the contract for reading the normalized catalog
type CatalogServiceInterface interface {
	GetCatalog(ctx context.Context, page, pageSize int) (models.CatalogPage, error)
}
