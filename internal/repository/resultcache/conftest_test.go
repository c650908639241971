package resultcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/db"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memStore is a map-backed store for round-trip tests.
type memStore map[string][]byte

func (m memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}

func newTestCache(t *testing.T, s store) *Cache {
	t.Helper()
	return New(s, time.Minute, nil, zap.NewNop())
}
