package dataset

import (
	"fmt"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Catalog is an ordered list of distinct class labels. A label's position is
// its class index.
type Catalog struct {
	labels []string
	index  map[string]int
}

// NewCatalog validates labels: at least one, none empty, no duplicates.
func NewCatalog(labels []string) (Catalog, error) {
	if len(labels) == 0 {
		return Catalog{}, fmt.Errorf("%w: at least one class is required", domain.ErrInvalidDataset)
	}
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if l == "" {
			return Catalog{}, fmt.Errorf("%w: class %d has an empty label", domain.ErrInvalidDataset, i)
		}
		if _, dup := idx[l]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate class %q", domain.ErrInvalidDataset, l)
		}
		idx[l] = i
	}
	return Catalog{labels: append([]string(nil), labels...), index: idx}, nil
}

// Len returns the number of classes.
func (c Catalog) Len() int { return len(c.labels) }

// Labels returns a copy of the labels in class order.
func (c Catalog) Labels() []string { return append([]string(nil), c.labels...) }

// Label returns the label of class i.
func (c Catalog) Label(i int) string { return c.labels[i] }

// IndexOf resolves a label to its class index.
func (c Catalog) IndexOf(label string) (int, bool) {
	i, ok := c.index[label]
	return i, ok
}
