package resultcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/knn"
)

func TestPutThenGet(t *testing.T) {
	s := memStore{}
	c := newTestCache(t, s)
	ctx := context.Background()

	votes := knn.Result{1.0 / 3, 2.0 / 3}
	neighbors := []knn.Neighbor{{Index: 2, Distance: 3}, {Index: 3, Distance: 3.6}, {Index: 0, Distance: 4}}
	c.Put(ctx, "wood-defects", "fp1", 3, []float64{3, 7}, votes, neighbors)

	if len(s) != 1 {
		t.Fatalf("expected one stored key, got %d", len(s))
	}

	gotVotes, gotNeighbors, ok := c.Get(ctx, "wood-defects", "fp1", 3, []float64{3, 7})
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(gotVotes) != 2 || gotVotes[0] != votes[0] || gotVotes[1] != votes[1] {
		t.Errorf("unexpected votes %v", gotVotes)
	}
	if len(gotNeighbors) != 3 || gotNeighbors[0] != neighbors[0] || gotNeighbors[2] != neighbors[2] {
		t.Errorf("unexpected neighbors %v", gotNeighbors)
	}
}

func TestGet_Miss(t *testing.T) {
	c := newTestCache(t, &mockKVStore{})
	if _, _, ok := c.Get(context.Background(), "clusters", "fp1", 5, []float64{1, 6}); ok {
		t.Fatal("expected miss")
	}
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}}
	c := newTestCache(t, ms)
	if _, _, ok := c.Get(context.Background(), "clusters", "fp1", 5, []float64{1, 6}); ok {
		t.Fatal("expected miss on store error")
	}
}

func TestGet_CorruptPayloadIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte{0xc1}, nil
	}}
	c := newTestCache(t, ms)
	if _, _, ok := c.Get(context.Background(), "clusters", "fp1", 5, []float64{1, 6}); ok {
		t.Fatal("expected miss on undecodable payload")
	}
}

func TestPut_UsesTTL(t *testing.T) {
	var gotTTL time.Duration
	var gotKey string
	ms := &mockKVStore{setFn: func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		gotKey, gotTTL = key, ttl
		return nil
	}}
	c := New(ms, 42*time.Second, nil, zap.NewNop())
	c.Put(context.Background(), "clusters", "fp1", 5, []float64{1, 6}, knn.Result{0, 1, 0}, nil)

	if gotTTL != 42*time.Second {
		t.Errorf("expected ttl 42s, got %v", gotTTL)
	}
	if !strings.HasPrefix(gotKey, keyPrefix) {
		t.Errorf("key %q lacks prefix %q", gotKey, keyPrefix)
	}
}

func TestPut_StoreErrorIgnored(t *testing.T) {
	ms := &mockKVStore{setFn: func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("READONLY")
	}}
	c := newTestCache(t, ms)
	c.Put(context.Background(), "clusters", "fp1", 5, []float64{1, 6}, knn.Result{0, 1, 0}, nil)
}

func TestKey(t *testing.T) {
	base := Key("clusters", "fp1", 5, []float64{1, 6})

	tests := []struct {
		name        string
		dataset     string
		fingerprint string
		k           int
		query       []float64
	}{
		{"OtherDataset", "wood-defects", "fp1", 5, []float64{1, 6}},
		{"OtherContents", "clusters", "fp2", 5, []float64{1, 6}},
		{"OtherK", "clusters", "fp1", 3, []float64{1, 6}},
		{"OtherQuery", "clusters", "fp1", 5, []float64{6, 1}},
		{"LongerQuery", "clusters", "fp1", 5, []float64{1, 6, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Key(tt.dataset, tt.fingerprint, tt.k, tt.query) == base {
				t.Errorf("key collision with base")
			}
		})
	}

	if Key("clusters", "fp1", 5, []float64{1, 6}) != base {
		t.Error("key must be deterministic")
	}
}

func TestGet_ChangedContentsMiss(t *testing.T) {
	s := memStore{}
	c := newTestCache(t, s)
	ctx := context.Background()

	c.Put(ctx, "wood-defects", "before-edit", 3, []float64{3, 7}, knn.Result{1, 0},
		[]knn.Neighbor{{Index: 7}, {Index: 8}, {Index: 9}})

	if _, _, ok := c.Get(ctx, "wood-defects", "after-edit", 3, []float64{3, 7}); ok {
		t.Fatal("entry written for other dataset contents must not be served")
	}
}

func TestCacheCounter(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_result_cache_total"}, []string{"result"})
	c := New(memStore{}, time.Minute, total, zap.NewNop())
	ctx := context.Background()

	c.Get(ctx, "clusters", "fp1", 5, []float64{1, 6})
	c.Put(ctx, "clusters", "fp1", 5, []float64{1, 6}, knn.Result{0, 1, 0}, nil)
	c.Get(ctx, "clusters", "fp1", 5, []float64{1, 6})

	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
}
