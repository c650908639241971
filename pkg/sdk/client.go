package knnvote

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/db"
	dbRedis "github.com/kailas-cloud/knnvote/internal/db/redis"
	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
	"github.com/kailas-cloud/knnvote/internal/repository/datasetfile"
	"github.com/kailas-cloud/knnvote/internal/repository/resultcache"
	classifyuc "github.com/kailas-cloud/knnvote/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/knnvote/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 5 * time.Minute
	defaultK                = 5
)

// Client classifies queries against named datasets held in memory.
type Client struct {
	store    db.Store // nil when the result cache is off
	registry *dataset.Registry
	svc      *classifyuc.Service
	health   *healthuc.Service
	obs      *observer
}

// New creates a Client, loads its datasets and, if configured, connects to
// the result cache. The provided context is used for the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		cacheTTL: defaultCacheTTL,
		defaultK: defaultK,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	reg, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.driver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("knnvote: cache not ready: %w", err)
		}
	}

	c := wireClient(reg, store, cfg, obs)
	obs.datasetsChanged(reg.Len())
	return c, nil
}

func loadRegistry(cfg *clientConfig) (*dataset.Registry, error) {
	reg := dataset.NewRegistry()
	if cfg.builtin {
		builtin, err := dataset.Builtin()
		if err != nil {
			return nil, fmt.Errorf("knnvote: builtin datasets: %w", err)
		}
		for _, d := range builtin {
			if err := reg.Register(d); err != nil {
				return nil, fmt.Errorf("knnvote: %w", err)
			}
		}
	}
	files, err := datasetfile.LoadAll(cfg.files)
	if err != nil {
		return nil, fmt.Errorf("knnvote: %w", err)
	}
	for _, d := range files {
		if err := reg.Register(d); err != nil {
			return nil, fmt.Errorf("knnvote: %w", err)
		}
	}
	return reg, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("knnvote: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("knnvote: unknown driver %q", cfg.driver)
	}
}

func wireClient(reg *dataset.Registry, store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Nil interfaces, not typed nil pointers, when the cache is off.
	var cache classifyuc.Cache
	var pinger healthuc.CachePinger
	if store != nil {
		cache = resultcache.New(store, cfg.cacheTTL, nil, zap.NewNop())
		pinger = store
	}

	return &Client{
		store:    store,
		registry: reg,
		svc: classifyuc.New(reg, cache, classifyuc.Limits{
			DefaultK: cfg.defaultK,
			MaxK:     cfg.maxK,
		}),
		health: healthuc.New(reg, pinger),
		obs:    obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// AddDataset registers a training set: objects[i] belongs to labels[mapping[i]].
func (c *Client) AddDataset(name string, labels []string, objects [][]float64, mapping []int) error {
	sp := c.obs.begin("dataset.add", unknownDataset)

	d, err := dataset.New(name, labels, objects, mapping)
	if err == nil {
		err = c.registry.Register(d)
	}
	if err != nil {
		sp.end(err, false)
		return fmt.Errorf("add dataset: %w", err)
	}

	sp.dataset = name
	sp.end(nil, false)
	c.obs.datasetsChanged(c.registry.Len())
	return nil
}

// Datasets lists registered datasets sorted by name.
func (c *Client) Datasets() []DatasetInfo {
	sums := c.svc.List()
	out := make([]DatasetInfo, len(sums))
	for i, s := range sums {
		out[i] = datasetFromSummary(s)
	}
	return out
}

// Dataset describes one dataset.
func (c *Client) Dataset(name string) (DatasetInfo, error) {
	s, err := c.svc.Describe(name)
	if err != nil {
		return DatasetInfo{}, err
	}
	return datasetFromSummary(s), nil
}

// Classify votes among the k nearest objects of the named dataset.
func (c *Client) Classify(ctx context.Context, name string, query []float64, opts ...ClassifyOption) (Classification, error) {
	sp := c.obs.begin("classify", c.datasetLabel(name))

	var cc classifyConfig
	for _, o := range opts {
		o(&cc)
	}

	out, err := c.svc.Classify(ctx, name, classifyuc.Request{K: cc.k, Query: query})
	sp.end(err, out.Cached)
	if err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	return classificationFromOutcome(&out), nil
}

// datasetLabel bounds metric labels to registered names.
func (c *Client) datasetLabel(name string) string {
	if _, err := c.registry.Get(name); err != nil {
		return unknownDataset
	}
	return name
}

// Health checks datasets and, when configured, the result cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

func datasetFromSummary(s classifyuc.Summary) DatasetInfo {
	return DatasetInfo{
		Name:        s.Name,
		Classes:     s.Classes,
		ClassCounts: s.ClassCounts,
		Size:        s.Size,
		Dim:         s.Dim,
	}
}

func classificationFromOutcome(o *classifyuc.Outcome) Classification {
	votes := make([]Vote, len(o.Votes))
	for i, v := range o.Votes {
		votes[i] = Vote{Label: v.Label, Fraction: v.Fraction}
	}
	neighbors := make([]Neighbor, len(o.Neighbors))
	for i, n := range o.Neighbors {
		neighbors[i] = Neighbor{Index: n.Index, Label: n.Label, Distance: n.Distance}
	}
	return Classification{
		Dataset:   o.Dataset,
		K:         o.K,
		Votes:     votes,
		Predicted: o.Predicted,
		Neighbors: neighbors,
		Cached:    o.Cached,
	}
}
