package knnvote

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithBuiltinDatasets()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoDatasets(t *testing.T) {
	c, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(c.Datasets()) != 0 {
		t.Error("expected no datasets")
	}
	if h := c.Health(context.Background()); h.Status != "error" {
		t.Errorf("expected error status without datasets, got %q", h.Status)
	}
}

func TestNew_DatasetFiles(t *testing.T) {
	c := newTestClient(t, WithDatasetFiles("../../data/fruit.toml", "../../data/iris-sample.yaml"))

	names := make([]string, 0, 4)
	for _, d := range c.Datasets() {
		names = append(names, d.Name)
	}
	want := []string{"clusters", "fruit", "iris-sample", "wood-defects"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("dataset %d: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(context.Background(), WithDatasetFiles("does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected error for missing dataset file")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClient_Classify(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Classify(context.Background(), "clusters", []float64{1, 6})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.K != defaultK || res.Predicted != "B" {
		t.Errorf("unexpected classification %+v", res)
	}

	res, err = c.Classify(context.Background(), "wood-defects", []float64{3, 7}, WithK(3))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Predicted != "normal" || len(res.Neighbors) != 3 {
		t.Errorf("unexpected classification %+v", res)
	}
}

func TestClient_ClassifyErrors(t *testing.T) {
	c := newTestClient(t, WithMaxK(4))
	ctx := context.Background()

	if _, err := c.Classify(ctx, "nope", []float64{0, 0}); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}
	if _, err := c.Classify(ctx, "clusters", []float64{0}, WithK(1)); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	_, err := c.Classify(ctx, "clusters", []float64{0, 0}, WithK(5))
	var pe *PreconditionError
	if !errors.As(err, &pe) || pe.Invariant != "k" {
		t.Errorf("expected k precondition error, got %v", err)
	}
}

func TestClient_AddDataset(t *testing.T) {
	c := newTestClient(t)

	err := c.AddDataset("line", []string{"low", "high"}, [][]float64{{0}, {1}, {9}, {10}}, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("AddDataset: %v", err)
	}
	res, err := c.Classify(context.Background(), "line", []float64{8.5}, WithK(2))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Predicted != "high" {
		t.Errorf("expected high, got %q", res.Predicted)
	}

	info, err := c.Dataset("line")
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if info.Size != 4 || info.Dim != 1 || info.ClassCounts[1] != 2 {
		t.Errorf("unexpected info %+v", info)
	}

	if err := c.AddDataset("line", []string{"x"}, [][]float64{{0}}, []int{0}); !errors.Is(err, ErrDatasetExists) {
		t.Errorf("expected ErrDatasetExists, got %v", err)
	}
	if err := c.AddDataset("bad", []string{"x"}, [][]float64{{0}}, []int{1}); !errors.Is(err, ErrPreconditionViolation) {
		t.Errorf("expected ErrPreconditionViolation, got %v", err)
	}
}

func TestClient_ResultCache(t *testing.T) {
	store := newMemStore()
	reg, err := loadRegistry(&clientConfig{builtin: true})
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	c := wireClient(reg, store, &clientConfig{cacheTTL: time.Minute, defaultK: 3}, nil)
	ctx := context.Background()

	first, err := c.Classify(ctx, "clusters", []float64{1, 6})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	second, err := c.Classify(ctx, "clusters", []float64{1, 6})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("expected miss then hit, got cached=%v,%v", first.Cached, second.Cached)
	}
	if second.Predicted != first.Predicted || len(second.Neighbors) != len(first.Neighbors) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}

	if h := c.Health(ctx); h.Checks["cache"] != "ok" {
		t.Errorf("expected cache check ok, got %+v", h)
	}
	store.pingErr = errors.New("down")
	if h := c.Health(ctx); h.Status != "degraded" {
		t.Errorf("expected degraded, got %q", h.Status)
	}

	c.Close()
	if !store.closed {
		t.Error("Close must close the store")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithValkey("localhost:6379", "pw").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "pw" {
		t.Errorf("WithValkey: %+v", cfg)
	}
	WithRedis("redis:6379", "").apply(cfg)
	if cfg.driver != "redis" || cfg.addrs[0] != "redis:6379" {
		t.Errorf("WithRedis: %+v", cfg)
	}
	WithCacheTTL(time.Second).apply(cfg)
	WithDefaultK(7).apply(cfg)
	WithMaxK(9).apply(cfg)
	WithDatasetFiles("a.yaml").apply(cfg)
	WithDatasetFiles("b.toml").apply(cfg)
	if cfg.cacheTTL != time.Second || cfg.defaultK != 7 || cfg.maxK != 9 || len(cfg.files) != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("WithLogger not applied")
	}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("WithPrometheus not applied")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.begin("classify", "clusters").end(nil, false)
	obs.begin("classify", "clusters").end(errors.New("err"), false)
	obs.datasetsChanged(3)
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second newObserver must reuse collectors: %v", err)
	}
	if first.inst.calls != second.inst.calls || first.inst.datasets != second.inst.datasets {
		t.Error("second observer must share the registered collectors")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.begin("classify", "clusters").end(nil, true)
	obs.begin("classify", unknownDataset).end(errors.New("test error"), false)
}

func TestClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := newMemStore()
	cfg := &clientConfig{builtin: true, cacheTTL: time.Minute, defaultK: 3}
	registry, err := loadRegistry(cfg)
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	c := wireClient(registry, store, cfg, obs)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Classify(ctx, "clusters", []float64{1, 6}); err != nil {
			t.Fatalf("Classify: %v", err)
		}
	}
	for _, name := range []string{"made-up-1", "made-up-2", "made-up-3"} {
		if _, err := c.Classify(ctx, name, []float64{1, 6}); !errors.Is(err, ErrDatasetNotFound) {
			t.Fatalf("expected ErrDatasetNotFound, got %v", err)
		}
	}
	if err := c.AddDataset("line", []string{"low", "high"}, [][]float64{{0}, {10}}, []int{0, 1}); err != nil {
		t.Fatalf("AddDataset: %v", err)
	}

	calls := obs.inst.calls
	tests := []struct {
		op, dataset, status string
		want                float64
	}{
		{"classify", "clusters", statusOK, 1},
		{"classify", "clusters", statusCached, 1},
		{"classify", unknownDataset, statusError, 3},
		{"dataset.add", "line", statusOK, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(calls.WithLabelValues(tt.op, tt.dataset, tt.status)); got != tt.want {
			t.Errorf("%s/%s/%s: got %v, want %v", tt.op, tt.dataset, tt.status, got, tt.want)
		}
	}
	if got := testutil.CollectAndCount(calls); got != len(tests) {
		t.Errorf("expected %d series, got %d", len(tests), got)
	}
	if got := testutil.ToFloat64(obs.inst.datasets); got != 3 {
		t.Errorf("expected datasets gauge 3, got %v", got)
	}
}
