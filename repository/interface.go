package repository

import (
	"context"

	"ar-model-dashboard/models"
)

// VariantStateRepositoryInterface defines the contract for variant state storage
type VariantStateRepositoryInterface interface {
	GetByVariantID(ctx context.Context, variantID int64) (*models.VariantState, error)
	GetBatch(ctx context.Context, variantIDs []int64) (map[int64]models.VariantState, error)
	// UpsertOnFirstSeen inserts the row for a new variant in one atomic statement.
	// If the row appeared concurrently, its group and asset urls are refreshed when they differ.
	// written is false when the statement changed nothing.
	UpsertOnFirstSeen(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) (written bool, err error)
	UpdateAssets(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) error
	SetHumanVerified(ctx context.Context, variantID int64, verified bool) error
	SetManualIncorrect(ctx context.Context, variantID int64, incorrect bool) error
	SetNotes(ctx context.Context, variantID int64, notes string) error
}
