// Package constraints assembles user-supplied constraint sources into a
// single violation matrix. Sources are evaluated in a fixed order so that
// column layout is stable across runs: equality functions, inequality
// functions, the combined function, the lower bound, the upper bound.
// Every value in the output is a signed violation; values at or below zero
// are satisfied.
package constraints

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultEpsilon is the equality tolerance used when the spec leaves
// Epsilon unset.
const DefaultEpsilon = 1e-6

var (
	// ErrInvalidSpec reports a constraint specification rejected at
	// construction.
	ErrInvalidSpec = errors.New("invalid constraint spec")
	// ErrInvalidShape reports a constraint source whose output rows do not
	// match the population.
	ErrInvalidShape = errors.New("constraint output shape mismatch")
)

// Func evaluates one constraint source over a gene matrix. The result must
// have one row per individual; each column is one constraint.
type Func func(genes *mat.Dense) *mat.Dense

// Vector adapts a source that produces one value per individual.
func Vector(f func(genes *mat.Dense) []float64) Func {
	return func(genes *mat.Dense) *mat.Dense {
		v := f(genes)
		return mat.NewDense(len(v), 1, v)
	}
}

// Spec describes the constraint sources of a problem. At least one source
// must be present. Empty function lists count as absent. Epsilon applies to
// equality sources only and defaults to DefaultEpsilon when nil.
type Spec struct {
	Eq         []Func
	Ineq       []Func
	Fn         Func
	LowerBound *float64
	UpperBound *float64
	Epsilon    *float64
}

// Set is a validated constraint source set.
type Set struct {
	eq      []Func
	ineq    []Func
	fn      Func
	lower   *float64
	upper   *float64
	epsilon float64
}

// New validates the spec and builds a set. It fails when no source is
// present or when Epsilon is negative.
func New(spec Spec) (*Set, error) {
	eps := DefaultEpsilon
	if spec.Epsilon != nil {
		eps = *spec.Epsilon
	}
	if eps < 0 {
		return nil, fmt.Errorf("%w: epsilon must be non-negative, got %v", ErrInvalidSpec, eps)
	}
	s := &Set{
		eq:      spec.Eq,
		ineq:    spec.Ineq,
		fn:      spec.Fn,
		lower:   spec.LowerBound,
		upper:   spec.UpperBound,
		epsilon: eps,
	}
	if len(s.eq) == 0 && len(s.ineq) == 0 && s.fn == nil && s.lower == nil && s.upper == nil {
		return nil, fmt.Errorf("%w: at least one constraint source is required", ErrInvalidSpec)
	}
	return s, nil
}

// NumSources returns how many sources contribute columns.
func (s *Set) NumSources() int {
	n := len(s.eq) + len(s.ineq)
	if s.fn != nil {
		n++
	}
	if s.lower != nil {
		n++
	}
	if s.upper != nil {
		n++
	}
	return n
}

// Evaluate runs every source over the gene matrix and concatenates the
// resulting columns left to right in the fixed source order. Equality
// outputs v become |v| - epsilon. Bounds contribute one column per variable:
// lower - gene and gene - upper respectively.
func (s *Set) Evaluate(genes *mat.Dense) (*mat.Dense, error) {
	n, v := genes.Dims()
	var blocks []*mat.Dense

	for k, f := range s.eq {
		out, err := s.runSource(fmt.Sprintf("eq[%d]", k), f, genes, n)
		if err != nil {
			return nil, err
		}
		out.Apply(func(_, _ int, x float64) float64 {
			return math.Abs(x) - s.epsilon
		}, out)
		blocks = append(blocks, out)
	}
	for k, f := range s.ineq {
		out, err := s.runSource(fmt.Sprintf("ineq[%d]", k), f, genes, n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, out)
	}
	if s.fn != nil {
		out, err := s.runSource("fn", s.fn, genes, n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, out)
	}
	if s.lower != nil {
		out := mat.NewDense(n, v, nil)
		out.Apply(func(i, j int, _ float64) float64 {
			return *s.lower - genes.At(i, j)
		}, out)
		blocks = append(blocks, out)
	}
	if s.upper != nil {
		out := mat.NewDense(n, v, nil)
		out.Apply(func(i, j int, _ float64) float64 {
			return genes.At(i, j) - *s.upper
		}, out)
		blocks = append(blocks, out)
	}

	return hcat(blocks), nil
}

func (s *Set) runSource(name string, f Func, genes *mat.Dense, n int) (*mat.Dense, error) {
	out := f(genes)
	rows, cols := out.Dims()
	if rows != n {
		return nil, fmt.Errorf("%w: source %s returned %d rows for %d individuals", ErrInvalidShape, name, rows, n)
	}
	cp := mat.NewDense(rows, cols, nil)
	cp.Copy(out)
	return cp, nil
}

func hcat(blocks []*mat.Dense) *mat.Dense {
	n, _ := blocks[0].Dims()
	total := 0
	for _, b := range blocks {
		_, c := b.Dims()
		total += c
	}
	out := mat.NewDense(n, total, nil)
	at := 0
	for _, b := range blocks {
		_, c := b.Dims()
		out.Slice(0, n, at, at+c).(*mat.Dense).Copy(b)
		at += c
	}
	return out
}

// Float returns a pointer to v, for filling bound and epsilon fields.
func Float(v float64) *float64 {
	return &v
}
