// Package fixtures holds the two reference k-NN scenarios as data tables:
// three planar clusters and a lumber defect sample set.
package fixtures

import (
	"github.com/kailas-cloud/knnvote/internal/domain/point"
	"github.com/kailas-cloud/knnvote/internal/domain/wood"
)

// Scenario is a labeled training set plus one query to classify.
type Scenario[T any] struct {
	Name    string
	Classes []string
	Objects []T
	Mapping []int
	Query   T
	K       int
}

// Clusters returns 15 points in three clusters of five: A near the origin,
// B near (1, 7) and C near (8, 1). The query (1, 6) sits inside cluster B.
func Clusters() Scenario[point.Point] {
	return Scenario[point.Point]{
		Name:    "clusters",
		Classes: []string{"A", "B", "C"},
		Objects: []point.Point{
			point.New(0, 0),
			point.New(1, 1),
			point.New(2, 3),
			point.New(3, 2),
			point.New(0, 3),

			point.New(0, 6),
			point.New(1, 8),
			point.New(2, 6),
			point.New(3, 7),
			point.New(0, 8),

			point.New(8, 1),
			point.New(9, 2),
			point.New(8, 0),
			point.New(7, 1),
			point.New(10, 3),
		},
		Mapping: []int{
			0, 0, 0, 0, 0,
			1, 1, 1, 1, 1,
			2, 2, 2, 2, 2,
		},
		Query: point.New(1, 6),
		K:     5,
	}
}

// WoodDefects returns four lumber samples measured by crack length and knot
// diameter, two labeled "defect" and two "normal".
func WoodDefects() Scenario[wood.Properties] {
	return Scenario[wood.Properties]{
		Name:    "wood-defects",
		Classes: []string{"defect", "normal"},
		Objects: []wood.Properties{
			wood.New(7, 7),
			wood.New(7, 4),
			wood.New(3, 4),
			wood.New(1, 4),
		},
		Mapping: []int{0, 0, 1, 1},
		Query:   wood.New(3, 7),
		K:       3,
	}
}

// PointFeatures flattens points into (x, y) feature slices.
func PointFeatures(pts []point.Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.X(), p.Y()}
	}
	return out
}

// WoodFeatures flattens samples into (crack, knot) feature slices.
func WoodFeatures(samples []wood.Properties) [][]float64 {
	out := make([][]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Features()
	}
	return out
}
