package dataset

import (
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

func TestNewCatalog(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		wantErr bool
	}{
		{"valid", []string{"A", "B"}, false},
		{"single", []string{"only"}, false},
		{"empty", nil, true},
		{"blank label", []string{"A", ""}, true},
		{"duplicate", []string{"A", "B", "A"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.labels)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCatalog(%v) error = %v, wantErr %v", tt.labels, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidDataset) {
				t.Errorf("expected ErrInvalidDataset, got %v", err)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	labels := []string{"defect", "normal"}
	c, err := NewCatalog(labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labels[0] = "mutated"

	if c.Label(0) != "defect" {
		t.Errorf("catalog must copy labels, got %q", c.Label(0))
	}
	if i, ok := c.IndexOf("normal"); !ok || i != 1 {
		t.Errorf("IndexOf(normal) = %d, %v", i, ok)
	}
	if _, ok := c.IndexOf("missing"); ok {
		t.Error("IndexOf(missing) should fail")
	}
}

func TestNewSet(t *testing.T) {
	if _, err := NewSet([]int{1, 2}, []int{0}, 1); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Errorf("length mismatch: want precondition violation, got %v", err)
	}
	if _, err := NewSet([]int{1, 2}, []int{0, 3}, 2); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Errorf("class range: want precondition violation, got %v", err)
	}
	if _, err := NewSet([]int{}, []int{}, 1); !errors.Is(err, domain.ErrInvalidDataset) {
		t.Errorf("empty: want ErrInvalidDataset, got %v", err)
	}

	s, err := NewSet([]string{"a", "b", "c"}, []int{0, 1, 1}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts := s.ClassCounts(2)
	if counts[0] != 1 || counts[1] != 2 {
		t.Errorf("unexpected class counts %v", counts)
	}
}

func TestNew(t *testing.T) {
	d, err := New("pts", []string{"x", "y"}, [][]float64{{0, 0}, {1, 1}, {2, 2}}, []int{0, 1, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name() != "pts" || d.Dim() != 2 || d.Len() != 3 || d.Catalog().Len() != 2 {
		t.Errorf("unexpected dataset %s dim=%d len=%d", d.Name(), d.Dim(), d.Len())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		dsName  string
		labels  []string
		objects [][]float64
		mapping []int
		want    error
	}{
		{"no name", "", []string{"a"}, [][]float64{{1}}, []int{0}, domain.ErrInvalidDataset},
		{"no classes", "d", nil, [][]float64{{1}}, []int{0}, domain.ErrInvalidDataset},
		{"no features", "d", []string{"a"}, [][]float64{{}}, []int{0}, domain.ErrInvalidDataset},
		{"ragged", "d", []string{"a"}, [][]float64{{1, 2}, {1}}, []int{0, 0}, domain.ErrDimensionMismatch},
		{"misaligned", "d", []string{"a"}, [][]float64{{1}, {2}}, []int{0}, domain.ErrPreconditionViolation},
		{"class range", "d", []string{"a"}, [][]float64{{1}}, []int{1}, domain.ErrPreconditionViolation},
		{"empty", "d", []string{"a"}, nil, nil, domain.ErrInvalidDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dsName, tt.labels, tt.objects, tt.mapping)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_CopiesObjects(t *testing.T) {
	objects := [][]float64{{1, 2}}
	d, err := New("copy", []string{"a"}, objects, []int{0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	objects[0][0] = 99
	if d.Set().Objects()[0][0] != 1 {
		t.Error("dataset must not alias caller slices")
	}
}

func TestFingerprint(t *testing.T) {
	labels := []string{"low", "high"}
	objects := [][]float64{{0}, {1}, {9}, {10}}
	mapping := []int{0, 0, 1, 1}

	base, err := New("line", labels, objects, mapping)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(base.Fingerprint()) != 64 {
		t.Fatalf("expected hex sha256, got %q", base.Fingerprint())
	}

	same, err := New("line", labels, [][]float64{{0}, {1}, {9}, {10}}, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if same.Fingerprint() != base.Fingerprint() {
		t.Error("equal contents must give equal fingerprints")
	}

	variants := []struct {
		name    string
		labels  []string
		objects [][]float64
		mapping []int
	}{
		{"relabeled", []string{"small", "high"}, objects, mapping},
		{"moved object", labels, [][]float64{{0}, {1}, {9}, {11}}, mapping},
		{"remapped", labels, objects, []int{0, 1, 1, 1}},
		{"shrunk", labels, objects[:3], mapping[:3]},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			d, err := New("line", v.labels, v.objects, v.mapping)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if d.Fingerprint() == base.Fingerprint() {
				t.Error("changed contents must change the fingerprint")
			}
		})
	}
}

func TestBuiltin(t *testing.T) {
	ds, err := Builtin()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("want 2 builtin datasets, got %d", len(ds))
	}
	if ds[0].Name() != "clusters" || ds[0].Len() != 15 || ds[0].Dim() != 2 {
		t.Errorf("unexpected clusters dataset: %s len=%d", ds[0].Name(), ds[0].Len())
	}
	if ds[1].Name() != "wood-defects" || ds[1].Len() != 4 {
		t.Errorf("unexpected wood dataset: %s len=%d", ds[1].Name(), ds[1].Len())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ds, err := Builtin()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// register in reverse to check List ordering
	for i := len(ds) - 1; i >= 0; i-- {
		if err := r.Register(ds[i]); err != nil {
			t.Fatalf("register %s: %v", ds[i].Name(), err)
		}
	}

	if err := r.Register(ds[0]); !errors.Is(err, domain.ErrDatasetExists) {
		t.Errorf("duplicate register: want ErrDatasetExists, got %v", err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Errorf("Get(missing): want ErrDatasetNotFound, got %v", err)
	}

	list := r.List()
	if len(list) != 2 || list[0].Name() != "clusters" || list[1].Name() != "wood-defects" {
		t.Errorf("unexpected list order")
	}
	if r.Len() != 2 {
		t.Errorf("expected Len 2, got %d", r.Len())
	}
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := NewRegistry()
	ds, _ := Builtin()
	for _, d := range ds {
		_ = r.Register(d)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Get("clusters"); err != nil {
				t.Errorf("Get: %v", err)
			}
			_ = r.List()
		}()
	}
	wg.Wait()
}
