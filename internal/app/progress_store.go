package app

import (
	"context"
	"encoding/json"
	"fmt"

	"progressive-quiz/internal/domain"
)

// Backend abstracts the durable key-value storage progress is kept in
// (memory, file, SQLite, Redis, Postgres).
type Backend interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// ProgressStore persists the single UserProgress record under a fixed key.
type ProgressStore struct {
	backend Backend
	key     string
}

func NewProgressStore(backend Backend, key string) *ProgressStore {
	return &ProgressStore{backend: backend, key: key}
}

// Key is the record key this store reads and writes.
func (s *ProgressStore) Key() string { return s.key }

// Load returns nil when no record is stored.
func (s *ProgressStore) Load(ctx context.Context) (*domain.UserProgress, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Key: s.key, Err: err}
	}
	if !ok {
		return nil, nil
	}
	progress, err := DecodeProgress(raw)
	if err != nil {
		return nil, &domain.StorageError{Op: "load", Key: s.key, Err: err}
	}
	return &progress, nil
}

func (s *ProgressStore) Save(ctx context.Context, progress domain.UserProgress) error {
	raw, err := EncodeProgress(progress)
	if err != nil {
		return &domain.StorageError{Op: "save", Key: s.key, Err: err}
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		return &domain.StorageError{Op: "save", Key: s.key, Err: err}
	}
	return nil
}

func (s *ProgressStore) Clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, s.key); err != nil {
		return &domain.StorageError{Op: "clear", Key: s.key, Err: err}
	}
	return nil
}

// EncodeProgress serializes p in the persisted record layout.
func EncodeProgress(p domain.UserProgress) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal progress: %w", err)
	}
	return raw, nil
}

// DecodeProgress parses a persisted record and restores its invariants.
func DecodeProgress(raw []byte) (domain.UserProgress, error) {
	var p domain.UserProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.UserProgress{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	p.Normalize()
	return p, nil
}
