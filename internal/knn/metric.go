package knn

import "math"

// Metric returns a non-negative distance between two feature vectors.
// It must be symmetric and zero for identical inputs.
type Metric[T any] func(a, b T) float64

// Vector is an n-dimensional numeric feature vector.
type Vector []float64

// Dim returns the number of coordinates.
func (v Vector) Dim() int { return len(v) }

// Euclidean returns the L2 distance between a and b.
// Assumes equal dimensions (caller's responsibility).
func Euclidean(a, b Vector) float64 {
	var sum float64
	for i := range a {
		d := b[i] - a[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
