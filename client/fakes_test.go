package client

import (
	"context"
	"errors"
	"sync"

	"ar-model-dashboard/models"
)

// memoryStore is a LocalStore kept in memory
type memoryStore struct {
	mu      sync.Mutex
	saved   map[int64]models.ClientVariantStatus
	saves   int
	loadErr error
}

func (m *memoryStore) Load(ctx context.Context) (map[int64]models.ClientVariantStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[int64]models.ClientVariantStatus, len(m.saved))
	for id, s := range m.saved {
		out[id] = s
	}
	return out, nil
}

func (m *memoryStore) Save(ctx context.Context, statuses map[int64]models.ClientVariantStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.saved = make(map[int64]models.ClientVariantStatus, len(statuses))
	for id, s := range statuses {
		m.saved[id] = s
	}
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	return nil
}

// recordingWriter records every update attempt and fails while err is set
type recordingWriter struct {
	mu       sync.Mutex
	requests []models.VariantUpdateRequest
	err      error
}

func (w *recordingWriter) UpdateVariant(ctx context.Context, req models.VariantUpdateRequest) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requests = append(w.requests, req)
	return w.err
}

func (w *recordingWriter) all() []models.VariantUpdateRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.VariantUpdateRequest(nil), w.requests...)
}

var errOffline = errors.New("network unreachable")
