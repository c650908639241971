// Package resultcache stores classification outcomes in a key-value store so
// repeated queries against the same dataset skip the neighbor scan.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/db"
	"github.com/kailas-cloud/knnvote/internal/knn"
)

const keyPrefix = "knnvote:result:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// entry is the msgpack payload of a cached classification.
type entry struct {
	Votes     []float64  `msgpack:"v"`
	Neighbors []neighbor `msgpack:"n"`
}

type neighbor struct {
	Index    int     `msgpack:"i"`
	Distance float64 `msgpack:"d"`
}

// Cache keeps classification results for ttl.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns a cached result. Store and decode failures count as a miss.
func (c *Cache) Get(ctx context.Context, dataset, fingerprint string, k int, query []float64) (knn.Result, []knn.Neighbor, bool) {
	key := Key(dataset, fingerprint, k, query)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return nil, nil, false
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to decode cached result", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return nil, nil, false
	}

	c.inc("hit")
	neighbors := make([]knn.Neighbor, len(e.Neighbors))
	for i, n := range e.Neighbors {
		neighbors[i] = knn.Neighbor{Index: n.Index, Distance: n.Distance}
	}
	return knn.Result(e.Votes), neighbors, true
}

// Put stores a result. Failures are logged and dropped.
func (c *Cache) Put(ctx context.Context, dataset, fingerprint string, k int, query []float64, votes knn.Result, neighbors []knn.Neighbor) {
	key := Key(dataset, fingerprint, k, query)

	e := entry{Votes: votes, Neighbors: make([]neighbor, len(neighbors))}
	for i, n := range neighbors {
		e.Neighbors[i] = neighbor{Index: n.Index, Distance: n.Distance}
	}

	data, err := msgpack.Marshal(&e)
	if err != nil {
		c.logger.Warn("Failed to encode result", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// Key derives the store key of a query: sha256 over the dataset name, its
// content fingerprint, k and the raw float64 bits of the query.
func Key(dataset, fingerprint string, k int, query []float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d:%s:%d:%s:%d:", len(dataset), dataset, len(fingerprint), fingerprint, k)
	var buf [8]byte
	for _, f := range query {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
