package knnvote

import (
	"io"

	"github.com/kailas-cloud/knnvote/internal/knn"
	"github.com/kailas-cloud/knnvote/internal/report"
)

// Metric returns a non-negative distance between two objects.
type Metric[T any] func(a, b T) float64

// Classify returns, per class in [0, countClasses), the share of the k objects
// nearest to query that belong to it. mapping[i] is the class of objects[i].
// Contract violations return an error wrapping ErrPreconditionViolation.
func Classify[T any](k, countClasses int, objects []T, mapping []int, query T, metric Metric[T]) ([]float64, error) {
	res, err := knn.Classify(k, countClasses, objects, mapping, query, knn.Metric[T](metric))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Euclidean is the straight-line distance between equal-length vectors.
func Euclidean(a, b []float64) float64 {
	return knn.Euclidean(a, b)
}

// Report writes one "<label>: <fraction>" line per class.
func Report(w io.Writer, labels []string, fractions []float64) error {
	return report.New(w).Report(labels, fractions)
}
