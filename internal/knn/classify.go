// Package knn implements k-nearest-neighbors vote classification: the k
// training objects closest to a query each cast one vote for their class,
// and the result is the fraction of votes per class.
package knn

import (
	"fmt"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Result holds one vote fraction per class, indexed by class.
type Result []float64

// Sum returns the total of all fractions (1 for any valid classification).
func (r Result) Sum() float64 {
	var s float64
	for _, f := range r {
		s += f
	}
	return s
}

// Best returns the class with the largest fraction. Ties go to the lower
// class index. Returns -1 for an empty result.
func (r Result) Best() (int, float64) {
	best, frac := -1, 0.0
	for c, f := range r {
		if best < 0 || f > frac {
			best, frac = c, f
		}
	}
	return best, frac
}

// Classify returns, for each class in [0, countClasses), the fraction of the
// k objects nearest to query whose mapping equals that class. mapping[i] is
// the class of objects[i].
//
// All inputs are validated before any distance is computed; a violated
// contract returns a *domain.PreconditionError.
func Classify[T any](
	k, countClasses int,
	objects []T, mapping []int,
	query T, metric Metric[T],
) (Result, error) {
	res, _, err := Explain(k, countClasses, objects, mapping, query, metric)
	return res, err
}

// Explain is Classify that also returns the voting neighbors, closest first.
func Explain[T any](
	k, countClasses int,
	objects []T, mapping []int,
	query T, metric Metric[T],
) (Result, []Neighbor, error) {
	if err := validate(k, countClasses, len(objects), mapping); err != nil {
		return nil, nil, err
	}

	nearest, err := Nearest(k, objects, query, metric)
	if err != nil {
		return nil, nil, err
	}

	return Vote(countClasses, nearest, mapping), nearest, nil
}

// Vote counts the classes of the given neighbors and divides by their count.
func Vote(countClasses int, neighbors []Neighbor, mapping []int) Result {
	res := make(Result, countClasses)
	if len(neighbors) == 0 {
		return res
	}
	counts := make([]int, countClasses)
	for _, n := range neighbors {
		counts[mapping[n.Index]]++
	}
	k := float64(len(neighbors))
	for c, cnt := range counts {
		res[c] = float64(cnt) / k
	}
	return res
}

// ClassifyVectors is Classify over Euclidean vectors with a dimension check.
func ClassifyVectors(k, countClasses int, objects []Vector, mapping []int, query Vector) (Result, error) {
	if err := validate(k, countClasses, len(objects), mapping); err != nil {
		return nil, err
	}
	for i, o := range objects {
		if o.Dim() != query.Dim() {
			return nil, fmt.Errorf("%w: object %d has %d features, query has %d",
				domain.ErrDimensionMismatch, i, o.Dim(), query.Dim())
		}
	}
	return Classify(k, countClasses, objects, mapping, query, Euclidean)
}

func validate(k, countClasses, n int, mapping []int) error {
	if countClasses < 1 {
		return domain.NewPrecondition(domain.InvariantClassCount, "countClasses=%d must be positive", countClasses)
	}
	if n != len(mapping) {
		return domain.NewPrecondition(domain.InvariantLength,
			"%d objects but %d class indices", n, len(mapping))
	}
	if k < 1 {
		return domain.NewPrecondition(domain.InvariantK, "k=%d must be positive", k)
	}
	if k > n {
		return domain.NewPrecondition(domain.InvariantK, "k=%d exceeds %d objects", k, n)
	}
	for i, c := range mapping {
		if c < 0 || c >= countClasses {
			return domain.NewPrecondition(domain.InvariantClassRange,
				"mapping[%d]=%d outside [0, %d)", i, c, countClasses)
		}
	}
	return nil
}
