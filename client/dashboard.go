package client

import (
	"context"
	"log"

	"ar-model-dashboard/models"
)

// DefaultPageSize is the catalog page size requested by a refresh
const DefaultPageSize = 200

// maxRefreshPages bounds a refresh against a backend reporting a runaway pageCount
const maxRefreshPages = 1000

// CatalogAPI is the subset of the backend a dashboard refresh needs
type CatalogAPI interface {
	FetchCatalog(ctx context.Context, page, pageSize int) (models.CatalogPage, error)
	SyncVariants(ctx context.Context, groups []models.CatalogGroup) (models.SyncStats, error)
	FetchVariantState(ctx context.Context, ids []int64) (map[int64]models.VariantStateView, error)
}

// Dashboard loads the catalog and keeps the status cache in step with the server
type Dashboard struct {
	api      CatalogAPI
	cache    *StatusCache
	pageSize int
}

// NewDashboard creates a new Dashboard
func NewDashboard(api CatalogAPI, cache *StatusCache, pageSize int) *Dashboard {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Dashboard{api: api, cache: cache, pageSize: pageSize}
}

// Refresh fetches every catalog page, synchronizes the variants, and hydrates the
// cache from the server. Only a catalog failure is returned; sync and hydration
// failures are logged and the catalog is still returned.
func (d *Dashboard) Refresh(ctx context.Context) ([]models.CatalogGroup, error) {
	groups, err := d.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		log.Printf("⚠️  Catalog is empty, nothing to synchronize")
		return groups, nil
	}

	stats, err := d.api.SyncVariants(ctx, groups)
	if err != nil {
		log.Printf("❌ Refresh: sync failed: %v", err)
	} else {
		log.Printf("🔄 Refresh: synced %d variants (%d new, %d updated)", stats.Total, stats.Inserted, stats.Updated)
	}

	ids := variantIDs(groups)
	if len(ids) == 0 {
		return groups, nil
	}

	state, err := d.api.FetchVariantState(ctx, ids)
	if err != nil {
		log.Printf("❌ Refresh: hydrate failed: %v", err)
		return groups, nil
	}
	d.cache.Hydrate(state)
	return groups, nil
}

func (d *Dashboard) fetchAll(ctx context.Context) ([]models.CatalogGroup, error) {
	first, err := d.api.FetchCatalog(ctx, 1, d.pageSize)
	if err != nil {
		return nil, err
	}

	groups := append([]models.CatalogGroup{}, first.Data...)
	pageCount := first.Pagination().PageCount
	if pageCount > maxRefreshPages {
		log.Printf("⚠️  Catalog reports %d pages, reading the first %d", pageCount, maxRefreshPages)
		pageCount = maxRefreshPages
	}

	for page := 2; page <= pageCount; page++ {
		next, err := d.api.FetchCatalog(ctx, page, d.pageSize)
		if err != nil {
			return nil, err
		}
		groups = append(groups, next.Data...)
	}

	log.Printf("📦 Refresh: loaded %d groups from %d pages", len(groups), max(pageCount, 1))
	return groups, nil
}

// variantIDs lists the usable variant ids of the catalog
func variantIDs(groups []models.CatalogGroup) []int64 {
	var ids []int64
	for _, g := range groups {
		for _, v := range g.Variants {
			if v.ID > 0 {
				ids = append(ids, v.ID)
			}
		}
	}
	return ids
}
