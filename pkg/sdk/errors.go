package knnvote

import "github.com/kailas-cloud/knnvote/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrPreconditionViolation = domain.ErrPreconditionViolation
	ErrDatasetNotFound       = domain.ErrDatasetNotFound
	ErrDatasetExists         = domain.ErrDatasetExists
	ErrInvalidDataset        = domain.ErrInvalidDataset
	ErrDimensionMismatch     = domain.ErrDimensionMismatch
)

// PreconditionError names the violated contract. Use errors.As() to inspect.
type PreconditionError = domain.PreconditionError
