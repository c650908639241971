package knnvote

// Vote is the share of the k nearest neighbors belonging to one class.
type Vote struct {
	Label    string
	Fraction float64
}

// Neighbor is one voting training object.
type Neighbor struct {
	Index    int
	Label    string
	Distance float64
}

// Classification is the result of Client.Classify.
type Classification struct {
	Dataset   string
	K         int
	Votes     []Vote
	Predicted string
	Neighbors []Neighbor
	Cached    bool
}

// DatasetInfo describes a registered dataset.
type DatasetInfo struct {
	Name        string
	Classes     []string
	ClassCounts []int
	Size        int
	Dim         int
}

// HealthStatus represents the aggregated client health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}
