package service

import (
	"context"

	"ar-model-dashboard/models"
)

// SyncServiceInterface defines the contract for reconciling the catalog into variant state
type SyncServiceInterface interface {
	// SyncCatalog reconciles every (group, variant) pair of groups into the store.
	// Repeating it with an unchanged catalog performs no writes.
	SyncCatalog(ctx context.Context, groups []models.CatalogGroup) (models.SyncStats, error)
}
