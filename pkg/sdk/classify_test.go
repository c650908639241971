package knnvote

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

type sample struct {
	crack, knot float64
}

func sampleDistance(a, b sample) float64 {
	return math.Hypot(a.crack-b.crack, a.knot-b.knot)
}

func TestClassify_Generic(t *testing.T) {
	samples := []sample{{7, 7}, {7, 4}, {3, 4}, {1, 4}}
	classes := []int{0, 0, 1, 1}

	got, err := Classify(3, 2, samples, classes, sample{3, 7}, sampleDistance)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if math.Abs(got[0]-1.0/3) > 1e-9 || math.Abs(got[1]-2.0/3) > 1e-9 {
		t.Errorf("unexpected fractions %v", got)
	}

	var buf bytes.Buffer
	if err := Report(&buf, []string{"defect", "normal"}, got); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if buf.String() != "defect: 0.3333333333333333\nnormal: 0.6666666666666666\n" {
		t.Errorf("unexpected report %q", buf.String())
	}
}

func TestClassify_Vectors(t *testing.T) {
	objects := [][]float64{{0, 0}, {0, 1}, {10, 10}}
	got, err := Classify(1, 2, objects, []int{0, 0, 1}, []float64{9, 9}, Euclidean)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("unexpected fractions %v", got)
	}
}

func TestClassify_Precondition(t *testing.T) {
	_, err := Classify(4, 1, []float64{1, 2}, []int{0, 0}, 0, func(a, b float64) float64 { return math.Abs(a - b) })
	if !errors.Is(err, ErrPreconditionViolation) {
		t.Fatalf("expected ErrPreconditionViolation, got %v", err)
	}

	_, err = Classify[float64](1, 1, []float64{1}, []int{0}, 0, nil)
	if !errors.Is(err, ErrPreconditionViolation) {
		t.Fatalf("nil metric: expected ErrPreconditionViolation, got %v", err)
	}
}
