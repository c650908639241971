package health

import "context"

// CachePinger checks result cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// DatasetCounter reports how many datasets are being served.
type DatasetCounter interface {
	Len() int
}
