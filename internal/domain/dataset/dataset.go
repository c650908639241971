// Package dataset holds named, labeled training sets of numeric feature
// vectors and the registry that serves them to the classifier.
package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/kailas-cloud/knnvote/internal/domain"
	"github.com/kailas-cloud/knnvote/internal/knn"
)

// MaxNameLength bounds dataset names.
const MaxNameLength = 128

// Dataset is a named training set of equal-dimension vectors.
type Dataset struct {
	name    string
	catalog Catalog
	set     Set[knn.Vector]
	dim     int
	digest  string
}

// New validates and builds a dataset. Objects are deep-copied.
func New(name string, labels []string, objects [][]float64, mapping []int) (Dataset, error) {
	if name == "" {
		return Dataset{}, fmt.Errorf("%w: name is required", domain.ErrInvalidDataset)
	}
	if len(name) > MaxNameLength {
		return Dataset{}, fmt.Errorf("%w: name too long (max %d chars)", domain.ErrInvalidDataset, MaxNameLength)
	}
	cat, err := NewCatalog(labels)
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %q: %w", name, err)
	}

	vecs := make([]knn.Vector, len(objects))
	dim := -1
	for i, o := range objects {
		if len(o) == 0 {
			return Dataset{}, fmt.Errorf("%w: dataset %q: object %d has no features", domain.ErrInvalidDataset, name, i)
		}
		if dim < 0 {
			dim = len(o)
		}
		if len(o) != dim {
			return Dataset{}, fmt.Errorf("%w: dataset %q: object %d has %d features, expected %d",
				domain.ErrDimensionMismatch, name, i, len(o), dim)
		}
		vecs[i] = append(knn.Vector(nil), o...)
	}

	set, err := NewSet(vecs, mapping, cat.Len())
	if err != nil {
		return Dataset{}, fmt.Errorf("dataset %q: %w", name, err)
	}

	return Dataset{name: name, catalog: cat, set: set, dim: dim, digest: fingerprint(&cat, vecs, mapping)}, nil
}

// fingerprint hashes labels, objects and mapping; the name is not part of it.
func fingerprint(cat *Catalog, objects []knn.Vector, mapping []int) string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		h.Write(buf[:])
	}

	writeInt(cat.Len())
	for _, l := range cat.labels {
		writeInt(len(l))
		h.Write([]byte(l))
	}
	writeInt(len(objects))
	for i, o := range objects {
		writeInt(len(o))
		for _, f := range o {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
			h.Write(buf[:])
		}
		writeInt(mapping[i])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Name returns the dataset identifier.
func (d *Dataset) Name() string { return d.name }

// Catalog returns the class labels.
func (d *Dataset) Catalog() Catalog { return d.catalog }

// Set returns the training set.
func (d *Dataset) Set() Set[knn.Vector] { return d.set }

// Dim returns the feature dimension.
func (d *Dataset) Dim() int { return d.dim }

// Len returns the number of training objects.
func (d *Dataset) Len() int { return d.set.Len() }

// Fingerprint identifies the dataset contents (hex sha256).
func (d *Dataset) Fingerprint() string { return d.digest }
