package knn

import (
	"container/heap"
	"math"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// Neighbor is a training object ranked by its distance to the query.
type Neighbor struct {
	Index    int     // position in the training set
	Distance float64 // metric(query, objects[Index])
}

// closer orders neighbors by distance, then by original index.
func closer(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

// Compile time check to ensure farthestFirst satisfies the heap interface.
var _ heap.Interface = (*farthestFirst)(nil)

// farthestFirst is a max-heap: the worst of the current k candidates sits on top.
type farthestFirst []Neighbor

func (h farthestFirst) Len() int           { return len(h) }
func (h farthestFirst) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h farthestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *farthestFirst) Push(x any) { *h = append(*h, x.(Neighbor)) }

func (h *farthestFirst) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// pushBounded keeps the k closest neighbors seen so far.
// When the heap is full, the candidate replaces the top only if it is closer.
func (h *farthestFirst) pushBounded(n Neighbor, k int) {
	if h.Len() < k {
		heap.Push(h, n)
		return
	}
	if closer(n, (*h)[0]) {
		(*h)[0] = n
		heap.Fix(h, 0)
	}
}

// drain empties the heap into a slice ordered closest first.
func (h *farthestFirst) drain() []Neighbor {
	out := make([]Neighbor, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Neighbor)
	}
	return out
}

// Nearest returns the k objects closest to query, closest first.
// Equal distances are ordered by training set index. The remaining
// objects are never sorted, so selection costs O(n log k).
func Nearest[T any](k int, objects []T, query T, metric Metric[T]) ([]Neighbor, error) {
	if metric == nil {
		return nil, domain.NewPrecondition(domain.InvariantMetric, "metric is nil")
	}
	if k < 1 {
		return nil, domain.NewPrecondition(domain.InvariantK, "k=%d must be positive", k)
	}
	if k > len(objects) {
		return nil, domain.NewPrecondition(domain.InvariantK, "k=%d exceeds %d objects", k, len(objects))
	}

	h := make(farthestFirst, 0, k)
	for i := range objects {
		d := metric(query, objects[i])
		if math.IsNaN(d) || d < 0 {
			return nil, domain.NewPrecondition(domain.InvariantDistance,
				"metric returned %v for object %d", d, i)
		}
		h.pushBounded(Neighbor{Index: i, Distance: d}, k)
	}
	return h.drain(), nil
}
