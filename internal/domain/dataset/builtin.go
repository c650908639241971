package dataset

import "github.com/kailas-cloud/knnvote/internal/fixtures"

// Builtin returns the reference scenarios as vector datasets:
// "clusters" (2D points) and "wood-defects" (crack length, knot diameter).
func Builtin() ([]Dataset, error) {
	c := fixtures.Clusters()
	clusters, err := New(c.Name, c.Classes, fixtures.PointFeatures(c.Objects), c.Mapping)
	if err != nil {
		return nil, err
	}

	w := fixtures.WoodDefects()
	woodDefects, err := New(w.Name, w.Classes, fixtures.WoodFeatures(w.Objects), w.Mapping)
	if err != nil {
		return nil, err
	}

	return []Dataset{clusters, woodDefects}, nil
}
