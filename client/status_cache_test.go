package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ar-model-dashboard/models"
)

func newTestCache(t *testing.T) (*StatusCache, *memoryStore, *recordingWriter) {
	t.Helper()
	store := &memoryStore{}
	writer := &recordingWriter{}
	cache := NewStatusCache(store, writer)
	cache.notesDebounce = 40 * time.Millisecond
	cache.writeInterval = time.Millisecond
	require.NoError(t, cache.Load(context.Background()))
	return cache, store, writer
}

func strPtr(s string) *string { return &s }

func TestStatusCache_NotesDebounceCollapsesEdits(t *testing.T) {
	cache, _, writer := newTestCache(t)

	cache.UpdateNotes(7, "s")
	cache.UpdateNotes(7, "sc")
	cache.UpdateNotes(7, "scale off")

	// Visible locally before any write
	s, ok := cache.Get(7)
	require.True(t, ok)
	require.NotNil(t, s.Notes)
	assert.Equal(t, "scale off", *s.Notes)
	assert.Empty(t, writer.all())

	cache.Wait()

	requests := writer.all()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(7), *requests[0].VariantID)
	require.NotNil(t, requests[0].Notes)
	assert.Equal(t, "scale off", *requests[0].Notes)
	assert.Nil(t, requests[0].HumanVerified)
	assert.Nil(t, requests[0].ManualIncorrect)
}

func TestStatusCache_NotesDebounceIsPerVariant(t *testing.T) {
	cache, _, writer := newTestCache(t)

	cache.UpdateNotes(1, "one")
	cache.UpdateNotes(2, "two")
	cache.UpdateNotes(1, "one!")
	cache.Wait()

	got := map[int64]string{}
	for _, req := range writer.all() {
		got[*req.VariantID] = *req.Notes
	}
	assert.Equal(t, map[int64]string{1: "one!", 2: "two"}, got)
}

func TestStatusCache_EmptyNotesClearLocally(t *testing.T) {
	cache, _, writer := newTestCache(t)

	cache.UpdateNotes(3, "draft")
	cache.UpdateNotes(3, "")
	cache.Wait()

	s, _ := cache.Get(3)
	assert.Nil(t, s.Notes)
	requests := writer.all()
	require.Len(t, requests, 1)
	assert.Equal(t, "", *requests[0].Notes)
}

func TestStatusCache_MutualExclusion(t *testing.T) {
	cache, _, writer := newTestCache(t)

	cache.UpdateManualIncorrect(5, true)
	s, _ := cache.Get(5)
	assert.True(t, s.ManualIncorrect)
	assert.False(t, s.HumanVerified)

	cache.UpdateHumanVerified(5, true)
	s, _ = cache.Get(5)
	assert.True(t, s.HumanVerified)
	assert.False(t, s.ManualIncorrect)

	cache.UpdateHumanVerified(5, false)
	s, _ = cache.Get(5)
	assert.False(t, s.HumanVerified)
	assert.False(t, s.ManualIncorrect)

	cache.Wait()

	requests := writer.all()
	require.Len(t, requests, 3)
	for _, req := range requests {
		require.NotNil(t, req.HumanVerified)
		require.NotNil(t, req.ManualIncorrect)
		assert.False(t, *req.HumanVerified && *req.ManualIncorrect)
		assert.Nil(t, req.Notes)
	}
}

func TestStatusCache_HydrateIsNonDestructive(t *testing.T) {
	cache, _, _ := newTestCache(t)

	require.NoError(t, cache.UpdateStatus(9, models.PlatformIOS, models.TestStatusPassed, nil))
	require.NoError(t, cache.UpdateStatus(9, models.PlatformAndroid, models.TestStatusFailed, nil))
	require.NoError(t, cache.UpdateAutoStatus(9, models.PlatformAndroid, models.AutoTestStatusFailed))
	cache.UpdateNotes(9, "local")
	cache.Wait()

	cache.Hydrate(map[int64]models.VariantStateView{
		9:  {HumanVerified: true, ManualIncorrect: false, Notes: strPtr("from server")},
		10: {ManualIncorrect: true},
	})

	s, ok := cache.Get(9)
	require.True(t, ok)
	assert.Equal(t, models.TestStatusPassed, s.IOSStatus)
	assert.Equal(t, models.TestStatusFailed, s.AndroidStatus)
	require.NotNil(t, s.AndroidAutoStatus)
	assert.Equal(t, models.AutoTestStatusFailed, *s.AndroidAutoStatus)
	assert.Nil(t, s.IOSAutoStatus)
	assert.True(t, s.HumanVerified)
	require.NotNil(t, s.Notes)
	assert.Equal(t, "from server", *s.Notes)

	fresh, ok := cache.Get(10)
	require.True(t, ok)
	assert.Equal(t, models.TestStatusNotTested, fresh.IOSStatus)
	assert.Equal(t, models.TestStatusNotTested, fresh.AndroidStatus)
	assert.True(t, fresh.ManualIncorrect)
	assert.Nil(t, fresh.Notes)
}

func TestStatusCache_HydrateDuringNotesDebounceKeepsEdit(t *testing.T) {
	cache, _, writer := newTestCache(t)

	cache.UpdateNotes(7, "operator edit")
	cache.Hydrate(map[int64]models.VariantStateView{
		7: {HumanVerified: true, Notes: strPtr("server old")},
	})

	s, ok := cache.Get(7)
	require.True(t, ok)
	assert.True(t, s.HumanVerified)
	require.NotNil(t, s.Notes)
	assert.Equal(t, "operator edit", *s.Notes)

	cache.Wait()

	requests := writer.all()
	require.Len(t, requests, 1)
	require.NotNil(t, requests[0].Notes)
	assert.Equal(t, "operator edit", *requests[0].Notes)

	// Once the write has gone out the server copy applies again
	cache.Hydrate(map[int64]models.VariantStateView{7: {Notes: strPtr("server new")}})
	s, _ = cache.Get(7)
	require.NotNil(t, s.Notes)
	assert.Equal(t, "server new", *s.Notes)
}

func TestStatusCache_HydrateNullNotesClearsLocal(t *testing.T) {
	cache, _, _ := newTestCache(t)
	require.NoError(t, cache.UpdateStatus(4, models.PlatformIOS, models.TestStatusPassed, strPtr("mine")))

	cache.Hydrate(map[int64]models.VariantStateView{4: {}})

	s, _ := cache.Get(4)
	assert.Nil(t, s.Notes)
	assert.Equal(t, models.TestStatusPassed, s.IOSStatus)
}

func TestStatusCache_ClientOnlyUpdatesNeverWrite(t *testing.T) {
	cache, store, writer := newTestCache(t)

	require.NoError(t, cache.UpdateStatus(1, models.PlatformIOS, models.TestStatusPassed, nil))
	require.NoError(t, cache.UpdateAutoStatus(1, models.PlatformIOS, models.AutoTestStatusLoading))
	cache.Wait()

	assert.Empty(t, writer.all())
	assert.Equal(t, 2, store.saves)
	assert.Contains(t, store.saved, int64(1))
}

func TestStatusCache_RejectsUnknownValues(t *testing.T) {
	cache, store, _ := newTestCache(t)

	assert.Error(t, cache.UpdateStatus(1, "windows", models.TestStatusPassed, nil))
	assert.Error(t, cache.UpdateStatus(1, models.PlatformIOS, "maybe", nil))
	assert.Error(t, cache.UpdateAutoStatus(1, models.PlatformAndroid, "done"))
	assert.Zero(t, store.saves)
}

func TestStatusCache_WriteFailureKeepsLocalValue(t *testing.T) {
	cache, _, writer := newTestCache(t)
	writer.err = errOffline

	cache.UpdateManualIncorrect(8, true)
	cache.Wait()

	assert.Len(t, writer.all(), defaultWriteAttempts)
	s, ok := cache.Get(8)
	require.True(t, ok)
	assert.True(t, s.ManualIncorrect)
}

func TestStatusCache_ValidationFailureIsNotRetried(t *testing.T) {
	cache, _, writer := newTestCache(t)
	writer.err = &HTTPError{StatusCode: 400, Message: "variantId: must be a positive integer"}

	cache.UpdateHumanVerified(8, true)
	cache.Wait()

	assert.Len(t, writer.all(), 1)
	s, _ := cache.Get(8)
	assert.True(t, s.HumanVerified)
}

func TestStatusCache_TransientServerErrorIsRetried(t *testing.T) {
	cache, _, writer := newTestCache(t)
	writer.err = &HTTPError{StatusCode: 503}

	cache.UpdateHumanVerified(8, true)
	cache.Wait()

	assert.Len(t, writer.all(), defaultWriteAttempts)
}

func TestStatusCache_LoadRestoresAndSurvivesCorruption(t *testing.T) {
	store := &memoryStore{saved: map[int64]models.ClientVariantStatus{
		3: {VariantID: 3, IOSStatus: models.TestStatusPassed, AndroidStatus: models.TestStatusNotTested},
	}}
	cache := NewStatusCache(store, nil)
	assert.False(t, cache.Loaded())
	require.NoError(t, cache.Load(context.Background()))
	assert.True(t, cache.Loaded())

	s, ok := cache.Get(3)
	require.True(t, ok)
	assert.Equal(t, models.TestStatusPassed, s.IOSStatus)

	broken := NewStatusCache(&memoryStore{loadErr: errOffline}, nil)
	require.NoError(t, broken.Load(context.Background()))
	assert.Empty(t, broken.All())
}

func TestStatusCache_ClearAllCancelsScheduledNotes(t *testing.T) {
	cache, store, writer := newTestCache(t)

	cache.UpdateNotes(2, "pending")
	require.NoError(t, cache.ClearAll())
	cache.Wait()

	assert.Empty(t, writer.all())
	assert.Empty(t, cache.All())
	assert.Nil(t, store.saved)
}

func TestStatusCache_GetReturnsCopies(t *testing.T) {
	cache, _, _ := newTestCache(t)
	cache.UpdateNotes(1, "original")

	s, _ := cache.Get(1)
	*s.Notes = "mutated"

	again, _ := cache.Get(1)
	assert.Equal(t, "original", *again.Notes)
	cache.Wait()
}

func TestStatusCache_WaitWhileUpdatesKeepArriving(t *testing.T) {
	cache, _, writer := newTestCache(t)

	const updates = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < updates; i++ {
			cache.UpdateHumanVerified(int64(i+1), true)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < updates; i++ {
			cache.Wait()
		}
	}()
	wg.Wait()

	cache.Wait()
	assert.Len(t, writer.all(), updates)
}
