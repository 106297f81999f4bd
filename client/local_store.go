package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ar-model-dashboard/models"
)

// DefaultStorageKey names the cached document, in a file or under a redis key
const DefaultStorageKey = "ar-model-test-statuses"

// LocalStore persists the operator's status map on the operator's machine
type LocalStore interface {
	Load(ctx context.Context) (map[int64]models.ClientVariantStatus, error)
	Save(ctx context.Context, statuses map[int64]models.ClientVariantStatus) error
	Clear(ctx context.Context) error
}

// encodeStatuses renders the map as one JSON object keyed by variant id
func encodeStatuses(statuses map[int64]models.ClientVariantStatus) ([]byte, error) {
	doc := make(map[string]models.ClientVariantStatus, len(statuses))
	for id, s := range statuses {
		doc[strconv.FormatInt(id, 10)] = s
	}
	return json.Marshal(doc)
}

// decodeStatuses parses a cached document. Keys that are not ids are dropped.
func decodeStatuses(data []byte) (map[int64]models.ClientVariantStatus, error) {
	var doc map[string]models.ClientVariantStatus
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[int64]models.ClientVariantStatus, len(doc))
	for key, s := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		s.VariantID = id
		out[id] = s
	}
	return out, nil
}

// FileStore keeps the status map in a single JSON file
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed local store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the cached statuses. A missing file is an empty cache.
func (s *FileStore) Load(_ context.Context) (map[int64]models.ClientVariantStatus, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[int64]models.ClientVariantStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status cache %s: %w", s.path, err)
	}

	statuses, err := decodeStatuses(data)
	if err != nil {
		return nil, fmt.Errorf("decode status cache %s: %w", s.path, err)
	}
	return statuses, nil
}

// Save replaces the file atomically
func (s *FileStore) Save(_ context.Context, statuses map[int64]models.ClientVariantStatus) error {
	data, err := encodeStatuses(statuses)
	if err != nil {
		return fmt.Errorf("failed to encode status cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write status cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace status cache: %w", err)
	}
	return nil
}

// Clear removes the file
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove status cache: %w", err)
	}
	return nil
}

// RedisStore keeps the status map under one redis key, for operators sharing a cache
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store backed by Redis
func NewRedisStore(addr, password string, db int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, key: DefaultStorageKey}
}

// Load reads the cached statuses. A missing key is an empty cache.
func (s *RedisStore) Load(ctx context.Context) (map[int64]models.ClientVariantStatus, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[int64]models.ClientVariantStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis status cache error: %w", err)
	}

	statuses, err := decodeStatuses(data)
	if err != nil {
		return nil, fmt.Errorf("decode redis status cache: %w", err)
	}
	return statuses, nil
}

// Save overwrites the key without expiry
func (s *RedisStore) Save(ctx context.Context, statuses map[int64]models.ClientVariantStatus) error {
	data, err := encodeStatuses(statuses)
	if err != nil {
		return fmt.Errorf("failed to encode status cache: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis status cache error: %w", err)
	}
	return nil
}

// Clear deletes the key
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis status cache error: %w", err)
	}
	return nil
}

// Close releases the redis connection pool
func (s *RedisStore) Close() error {
	return s.client.Close()
}
