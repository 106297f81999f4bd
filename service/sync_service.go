package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ar-model-dashboard/models"
	"ar-model-dashboard/repository"
)

// SyncService reconciles catalog asset references into the variant state store
// Implements SyncServiceInterface
type SyncService struct {
	repository repository.VariantStateRepositoryInterface
}

// NewSyncService creates a new SyncService
func NewSyncService(repo repository.VariantStateRepositoryInterface) *SyncService {
	return &SyncService{
		repository: repo,
	}
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// SyncCatalog synchronizes the asset urls of every variant into the store.
// New variants are inserted with default curated state; known variants are only
// written when an asset url changed. Curated flags and notes are never touched.
func (s *SyncService) SyncCatalog(ctx context.Context, groups []models.CatalogGroup) (models.SyncStats, error) {
	stats := models.SyncStats{RunID: uuid.NewString()}
	log.Printf("🔄 [%s] Starting variant synchronization for %d groups", stats.RunID, len(groups))

	for _, group := range groups {
		for _, variant := range group.Variants {
			stats.Total++

			if variant.ID <= 0 {
				log.Printf("⚠️  [%s] Skipping variant %q of group %d: no usable id", stats.RunID, variant.Name, group.ID)
				stats.Skipped++
				continue
			}

			if err := s.syncVariant(ctx, group.ID, variant, &stats); err != nil {
				log.Printf("❌ [%s] Synchronization aborted at variant_id %d: %v", stats.RunID, variant.ID, err)
				return stats, err
			}
		}
	}

	log.Printf("🎉 [%s] Synchronization completed: %d inserted, %d updated, %d unchanged, %d skipped, %d total",
		stats.RunID, stats.Inserted, stats.Updated, stats.Unchanged, stats.Skipped, stats.Total)
	return stats, nil
}

func (s *SyncService) syncVariant(ctx context.Context, groupID int64, variant models.CatalogVariant, stats *models.SyncStats) error {
	existing, err := s.repository.GetByVariantID(ctx, variant.ID)
	if err != nil {
		return fmt.Errorf("failed to read variant %d: %w", variant.ID, err)
	}

	if existing == nil {
		// Atomic even against a concurrent pass inserting the same variant
		written, err := s.repository.UpsertOnFirstSeen(ctx, variant.ID, groupID, variant.IOSAssetURL, variant.AndroidAssetURL)
		if err != nil {
			return fmt.Errorf("failed to insert variant %d: %w", variant.ID, err)
		}
		if written {
			log.Printf("🆕 [%s] New variant stored (variant_id: %d, group_id: %d)", stats.RunID, variant.ID, groupID)
			stats.Inserted++
		} else {
			stats.Unchanged++
		}
		return nil
	}

	if !assetsChanged(existing, variant) {
		stats.Unchanged++
		return nil
	}

	if err := s.repository.UpdateAssets(ctx, variant.ID, groupID, variant.IOSAssetURL, variant.AndroidAssetURL); err != nil {
		return fmt.Errorf("failed to update variant %d: %w", variant.ID, err)
	}
	log.Printf("♻️  [%s] Asset urls changed (variant_id: %d)", stats.RunID, variant.ID)
	stats.Updated++
	return nil
}

// assetsChanged compares only the two asset urls; absent and empty are the same
func assetsChanged(existing *models.VariantState, variant models.CatalogVariant) bool {
	return deref(existing.IOSAssetURL) != variant.IOSAssetURL ||
		deref(existing.AndroidAssetURL) != variant.AndroidAssetURL
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
