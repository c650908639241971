package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPreconditionViolation signals a broken caller contract (bad k, misaligned inputs).
	ErrPreconditionViolation = errors.New("precondition violation")
	// ErrDatasetNotFound signals a missing dataset.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrDatasetExists signals a duplicate dataset name.
	ErrDatasetExists = errors.New("dataset already exists")
	// ErrInvalidDataset signals a malformed dataset definition.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrDimensionMismatch signals a query whose dimension differs from the dataset.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// Invariant names the caller contract a PreconditionError refers to.
type Invariant string

// Classifier and reporter invariants.
const (
	InvariantK          Invariant = "k"
	InvariantClassCount Invariant = "class_count"
	InvariantLength     Invariant = "length"
	InvariantClassRange Invariant = "class_range"
	InvariantDistance   Invariant = "distance"
	InvariantMetric     Invariant = "metric"
)

// PreconditionError wraps ErrPreconditionViolation with the failed invariant.
type PreconditionError struct {
	Invariant Invariant
	Detail    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPreconditionViolation.Error(), e.Invariant, e.Detail)
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionViolation }

// NewPrecondition creates a precondition error for the given invariant.
func NewPrecondition(inv Invariant, format string, args ...any) error {
	return &PreconditionError{Invariant: inv, Detail: fmt.Sprintf(format, args...)}
}

// InvariantOf returns the invariant behind err, if err is a PreconditionError.
func InvariantOf(err error) (Invariant, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Invariant, true
	}
	return "", false
}
