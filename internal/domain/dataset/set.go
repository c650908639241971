package dataset

import (
	"fmt"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Set is a training set: objects[i] belongs to class mapping[i].
// It is never mutated after construction.
type Set[T any] struct {
	objects []T
	mapping []int
}

// NewSet copies and validates a training set against the class count.
func NewSet[T any](objects []T, mapping []int, countClasses int) (Set[T], error) {
	if len(objects) != len(mapping) {
		return Set[T]{}, domain.NewPrecondition(domain.InvariantLength,
			"%d objects but %d class indices", len(objects), len(mapping))
	}
	for i, c := range mapping {
		if c < 0 || c >= countClasses {
			return Set[T]{}, domain.NewPrecondition(domain.InvariantClassRange,
				"mapping[%d]=%d outside [0, %d)", i, c, countClasses)
		}
	}
	if len(objects) == 0 {
		return Set[T]{}, fmt.Errorf("%w: training set is empty", domain.ErrInvalidDataset)
	}
	return Set[T]{
		objects: append([]T(nil), objects...),
		mapping: append([]int(nil), mapping...),
	}, nil
}

// Len returns the number of training objects.
func (s Set[T]) Len() int { return len(s.objects) }

// Objects returns the training objects. Callers must not modify the slice.
func (s Set[T]) Objects() []T { return s.objects }

// Mapping returns the class index of each object. Callers must not modify the slice.
func (s Set[T]) Mapping() []int { return s.mapping }

// ClassCounts returns the number of objects per class.
func (s Set[T]) ClassCounts(countClasses int) []int {
	counts := make([]int, countClasses)
	for _, c := range s.mapping {
		counts[c]++
	}
	return counts
}
