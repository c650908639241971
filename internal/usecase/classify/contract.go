package classify

import (
	"context"

	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
	"github.com/kailas-cloud/knnvote/internal/knn"
)

// DatasetReader resolves training sets by name.
type DatasetReader interface {
	Get(name string) (dataset.Dataset, error)
	List() []dataset.Dataset
}

// Cache stores classification results per dataset contents (fingerprint).
// Implementations swallow their own errors.
type Cache interface {
	Get(ctx context.Context, dataset, fingerprint string, k int, query []float64) (knn.Result, []knn.Neighbor, bool)
	Put(ctx context.Context, dataset, fingerprint string, k int, query []float64, votes knn.Result, neighbors []knn.Neighbor)
}
