// Package classify serves k-NN vote classification over registered datasets.
package classify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/knnvote/internal/domain"
	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
	"github.com/kailas-cloud/knnvote/internal/knn"
	"github.com/kailas-cloud/knnvote/internal/logger"
	"github.com/kailas-cloud/knnvote/internal/metrics"
)

// Request is a single classification query. K=0 selects the default k.
type Request struct {
	K     int
	Query []float64
}

// Vote is the share of the k nearest neighbors belonging to one class.
type Vote struct {
	Label    string
	Fraction float64
}

// Neighbor is one of the k training objects closest to the query.
type Neighbor struct {
	Index    int
	Label    string
	Distance float64
}

// Outcome is the classification of one query.
type Outcome struct {
	Dataset   string
	K         int
	Votes     []Vote // one per class, in catalog order
	Predicted string // label with the largest fraction, lowest class index on ties
	Neighbors []Neighbor
	Cached    bool
}

// Fractions returns the vote fractions in class order.
func (o Outcome) Fractions() []float64 {
	out := make([]float64, len(o.Votes))
	for i, v := range o.Votes {
		out[i] = v.Fraction
	}
	return out
}

// Labels returns the class labels in class order.
func (o Outcome) Labels() []string {
	out := make([]string, len(o.Votes))
	for i, v := range o.Votes {
		out[i] = v.Label
	}
	return out
}

// Summary describes a registered dataset.
type Summary struct {
	Name        string
	Classes     []string
	ClassCounts []int
	Size        int
	Dim         int
}

// Limits bounds k for incoming requests.
type Limits struct {
	DefaultK int
	MaxK     int
}

// Service classifies queries against named datasets.
type Service struct {
	datasets DatasetReader
	cache    Cache
	limits   Limits
}

// New creates a classification service. cache can be nil.
func New(datasets DatasetReader, cache Cache, limits Limits) *Service {
	return &Service{datasets: datasets, cache: cache, limits: limits}
}

// unknownDataset is the metrics label of lookups that matched no dataset.
const unknownDataset = "unknown"

// Classify votes among the k nearest training objects of the named dataset.
func (s *Service) Classify(ctx context.Context, datasetName string, req Request) (Outcome, error) {
	start := time.Now()
	label := unknownDataset

	var out Outcome
	d, err := s.datasets.Get(datasetName)
	if err != nil {
		err = fmt.Errorf("get dataset: %w", err)
	} else {
		label = d.Name()
		out, err = s.classify(ctx, &d, req)
	}

	status := "ok"
	if err != nil {
		status = "error"
		logger.FromContext(ctx).Warn("Classification failed",
			zap.String("dataset", datasetName),
			zap.Int("k", req.K),
			zap.Error(err),
		)
	} else {
		logger.FromContext(ctx).Debug("Classified query",
			zap.String("dataset", datasetName),
			zap.Int("k", out.K),
			zap.String("predicted", out.Predicted),
			zap.Bool("cached", out.Cached),
		)
	}
	metrics.ClassificationsTotal.WithLabelValues(label, status).Inc()
	metrics.ClassificationDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	return out, err
}

func (s *Service) classify(ctx context.Context, d *dataset.Dataset, req Request) (Outcome, error) {
	k := req.K
	if k == 0 {
		k = s.limits.DefaultK
	}
	if s.limits.MaxK > 0 && k > s.limits.MaxK {
		return Outcome{}, domain.NewPrecondition(domain.InvariantK, "k=%d exceeds max_k=%d", k, s.limits.MaxK)
	}
	if len(req.Query) != d.Dim() {
		return Outcome{}, fmt.Errorf("%w: query has %d features, dataset %q expects %d",
			domain.ErrDimensionMismatch, len(req.Query), d.Name(), d.Dim())
	}

	if s.cache != nil {
		votes, neighbors, ok := s.cache.Get(ctx, d.Name(), d.Fingerprint(), k, req.Query)
		if ok && fitsDataset(d, k, votes, neighbors) {
			out := buildOutcome(d, k, votes, neighbors)
			out.Cached = true
			return out, nil
		}
	}

	set := d.Set()
	countClasses := d.Catalog().Len()
	votes, neighbors, err := knn.Explain(k, countClasses, set.Objects(), set.Mapping(), knn.Vector(req.Query), knn.Euclidean)
	if err != nil {
		return Outcome{}, fmt.Errorf("classify: %w", err)
	}

	if s.cache != nil {
		s.cache.Put(ctx, d.Name(), d.Fingerprint(), k, req.Query, votes, neighbors)
	}
	return buildOutcome(d, k, votes, neighbors), nil
}

// fitsDataset rejects cached entries whose shape does not match the dataset:
// one fraction per class, exactly k neighbors, every index inside the set.
func fitsDataset(d *dataset.Dataset, k int, votes knn.Result, neighbors []knn.Neighbor) bool {
	if len(votes) != d.Catalog().Len() || len(neighbors) != k {
		return false
	}
	for _, n := range neighbors {
		if n.Index < 0 || n.Index >= d.Len() {
			return false
		}
	}
	return true
}

// List summarizes every registered dataset.
func (s *Service) List() []Summary {
	ds := s.datasets.List()
	out := make([]Summary, len(ds))
	for i := range ds {
		out[i] = summarize(&ds[i])
	}
	return out
}

// Describe summarizes one dataset.
func (s *Service) Describe(name string) (Summary, error) {
	d, err := s.datasets.Get(name)
	if err != nil {
		return Summary{}, fmt.Errorf("get dataset: %w", err)
	}
	return summarize(&d), nil
}

func summarize(d *dataset.Dataset) Summary {
	cat := d.Catalog()
	return Summary{
		Name:        d.Name(),
		Classes:     cat.Labels(),
		ClassCounts: d.Set().ClassCounts(cat.Len()),
		Size:        d.Len(),
		Dim:         d.Dim(),
	}
}

func buildOutcome(d *dataset.Dataset, k int, votes knn.Result, neighbors []knn.Neighbor) Outcome {
	cat := d.Catalog()
	mapping := d.Set().Mapping()

	out := Outcome{
		Dataset:   d.Name(),
		K:         k,
		Votes:     make([]Vote, len(votes)),
		Neighbors: make([]Neighbor, len(neighbors)),
	}
	for c, f := range votes {
		out.Votes[c] = Vote{Label: cat.Label(c), Fraction: f}
	}
	if best, _ := votes.Best(); best >= 0 {
		out.Predicted = cat.Label(best)
	}
	for i, n := range neighbors {
		out.Neighbors[i] = Neighbor{Index: n.Index, Label: cat.Label(mapping[n.Index]), Distance: n.Distance}
	}
	return out
}
