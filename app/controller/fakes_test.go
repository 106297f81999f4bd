package controller

import (
	"context"
	"fmt"

	"ar-model-dashboard/models"
)

type fakeCatalogService struct {
	page      models.CatalogPage
	err       error
	gotPage   int
	gotSize   int
	callCount int
}

func (f *fakeCatalogService) GetCatalog(ctx context.Context, page, pageSize int) (models.CatalogPage, error) {
	f.callCount++
	f.gotPage, f.gotSize = page, pageSize
	return f.page, f.err
}

type fakeSyncService struct {
	groups []models.CatalogGroup
	stats  models.SyncStats
	err    error
}

func (f *fakeSyncService) SyncCatalog(ctx context.Context, groups []models.CatalogGroup) (models.SyncStats, error) {
	f.groups = groups
	return f.stats, f.err
}

// fakeRepository applies curated updates in memory and records them in order
type fakeRepository struct {
	states   map[int64]models.VariantState
	calls    []string
	batchIDs []int64
	err      error
}

func newFakeRepository(states ...models.VariantState) *fakeRepository {
	f := &fakeRepository{states: make(map[int64]models.VariantState)}
	for _, s := range states {
		f.states[s.VariantID] = s
	}
	return f
}

func (f *fakeRepository) GetByVariantID(ctx context.Context, variantID int64) (*models.VariantState, error) {
	if s, ok := f.states[variantID]; ok {
		return &s, nil
	}
	return nil, f.err
}

func (f *fakeRepository) GetBatch(ctx context.Context, variantIDs []int64) (map[int64]models.VariantState, error) {
	f.batchIDs = variantIDs
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]models.VariantState)
	for _, id := range variantIDs {
		if s, ok := f.states[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeRepository) UpsertOnFirstSeen(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) (bool, error) {
	return false, fmt.Errorf("not used")
}

func (f *fakeRepository) UpdateAssets(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) error {
	return fmt.Errorf("not used")
}

func (f *fakeRepository) SetHumanVerified(ctx context.Context, variantID int64, verified bool) error {
	f.calls = append(f.calls, fmt.Sprintf("humanVerified=%t", verified))
	if f.err != nil {
		return f.err
	}
	s := f.states[variantID]
	s.HumanVerified = verified
	if verified {
		s.ManualIncorrect = false
	}
	f.states[variantID] = s
	return nil
}

func (f *fakeRepository) SetManualIncorrect(ctx context.Context, variantID int64, incorrect bool) error {
	f.calls = append(f.calls, fmt.Sprintf("manualIncorrect=%t", incorrect))
	if f.err != nil {
		return f.err
	}
	s := f.states[variantID]
	s.ManualIncorrect = incorrect
	if incorrect {
		s.HumanVerified = false
	}
	f.states[variantID] = s
	return nil
}

func (f *fakeRepository) SetNotes(ctx context.Context, variantID int64, notes string) error {
	f.calls = append(f.calls, fmt.Sprintf("notes=%q", notes))
	if f.err != nil {
		return f.err
	}
	s := f.states[variantID]
	if notes == "" {
		s.Notes = nil
	} else {
		s.Notes = &notes
	}
	f.states[variantID] = s
	return nil
}
