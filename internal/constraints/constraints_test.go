package constraints

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func sumGenes(genes *mat.Dense) []float64 {
	n, v := genes.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < v; j++ {
			out[i] += genes.At(i, j)
		}
	}
	return out
}

func TestNewRejectsEmptySpec(t *testing.T) {
	if _, err := New(Spec{}); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
	// Empty function lists count as absent sources.
	if _, err := New(Spec{Eq: []Func{}, Ineq: []Func{}}); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec for empty lists, got %v", err)
	}
}

func TestNewRejectsNegativeEpsilon(t *testing.T) {
	spec := Spec{
		Ineq:    []Func{Vector(sumGenes)},
		Epsilon: Float(-1e-3),
	}
	if _, err := New(spec); !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestLowerBoundColumns(t *testing.T) {
	set, err := New(Spec{LowerBound: Float(5.0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	genes := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out, err := set.Evaluate(genes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []float64{4, 3, 2, 1}
	if diff := cmp.Diff(want, out.RawMatrix().Data); diff != "" {
		t.Fatalf("lower bound violations mismatch (-want +got):\n%s", diff)
	}
}

func TestUpperBoundColumns(t *testing.T) {
	set, err := New(Spec{UpperBound: Float(10.0)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	genes := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out, err := set.Evaluate(genes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []float64{-9, -8, -7, -6}
	if diff := cmp.Diff(want, out.RawMatrix().Data); diff != "" {
		t.Fatalf("upper bound violations mismatch (-want +got):\n%s", diff)
	}
}

func TestEqualityTransform(t *testing.T) {
	// eq: x0 + x1 - 3 == 0 with the default epsilon.
	eq := Vector(func(genes *mat.Dense) []float64 {
		n, _ := genes.Dims()
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = genes.At(i, 0) + genes.At(i, 1) - 3
		}
		return out
	})
	set, err := New(Spec{Eq: []Func{eq}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	genes := mat.NewDense(2, 2, []float64{1, 2, 1, 4})
	out, err := set.Evaluate(genes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if r, c := out.Dims(); r != 2 || c != 1 {
		t.Fatalf("dims = %dx%d, want 2x1", r, c)
	}
	// Row 0 sums to exactly 3: |0| - eps.
	if got := out.At(0, 0); got != -DefaultEpsilon {
		t.Fatalf("exact equality violation = %v, want %v", got, -DefaultEpsilon)
	}
	// Row 1 is off by 2: |2| - eps.
	if got, want := out.At(1, 0), 2-DefaultEpsilon; math.Abs(got-want) > 1e-12 {
		t.Fatalf("violated equality = %v, want %v", got, want)
	}
}

func TestSourceOrderIsFixed(t *testing.T) {
	constant := func(v float64) Func {
		return Vector(func(genes *mat.Dense) []float64 {
			n, _ := genes.Dims()
			out := make([]float64, n)
			for i := range out {
				out[i] = v
			}
			return out
		})
	}
	eps := 0.0
	set, err := New(Spec{
		Eq:         []Func{constant(1), constant(2)},
		Ineq:       []Func{constant(3)},
		Fn:         constant(4),
		LowerBound: Float(0),
		UpperBound: Float(10),
		Epsilon:    Float(eps),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if set.NumSources() != 6 {
		t.Fatalf("NumSources = %d, want 6", set.NumSources())
	}
	genes := mat.NewDense(1, 2, []float64{7, 8})
	out, err := set.Evaluate(genes)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// eq eq ineq fn (lower x2) (upper x2)
	want := []float64{1, 2, 3, 4, -7, -8, -3, -2}
	if diff := cmp.Diff(want, out.RawMatrix().Data); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestShapeMismatchDetected(t *testing.T) {
	bad := func(genes *mat.Dense) *mat.Dense {
		return mat.NewDense(1, 1, []float64{0})
	}
	set, err := New(Spec{Ineq: []Func{bad}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	genes := mat.NewDense(3, 2, nil)
	if _, err := set.Evaluate(genes); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("expected ErrInvalidShape, got %v", err)
	}
}
