package dataset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Registry maps dataset names to read-only datasets. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	datasets map[string]Dataset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{datasets: make(map[string]Dataset)}
}

// Register adds a dataset. Names are unique.
func (r *Registry) Register(d Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[d.Name()]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDatasetExists, d.Name())
	}
	r.datasets[d.Name()] = d
	return nil
}

// Get returns a dataset by name.
func (r *Registry) Get(name string) (Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.datasets[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", domain.ErrDatasetNotFound, name)
	}
	return d, nil
}

// List returns all datasets sorted by name.
func (r *Registry) List() []Dataset {
	r.mu.RLock()
	out := make([]Dataset, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of registered datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}
