// Package genetic defines the individual and population value types shared
// by every stage of the evolutionary loop. A population is a set of
// row-aligned matrices; all per-individual vectors are optional and nil when
// the corresponding stage has not run yet.
package genetic

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// FeasibilityTolerance is the slack subtracted from an individual's summed
// positive constraint values before they count as a violation.
const FeasibilityTolerance = 1e-6

// Individual is a single candidate solution extracted from a population.
// Constraints is nil for unconstrained problems. Rank and SurvivalScore are
// nil until survival has scored the population the individual came from.
type Individual struct {
	Genes         []float64
	Fitness       []float64
	Constraints   []float64
	Rank          *int
	SurvivalScore *float64
}

// IsFeasible reports whether the individual satisfies all constraints.
// Unconstrained individuals are always feasible.
func (ind Individual) IsFeasible() bool {
	return violationTotal(ind.Constraints) == 0
}

// IsBest reports whether the individual sits on the first front. Unranked
// individuals are treated as best.
func (ind Individual) IsBest() bool {
	return ind.Rank == nil || *ind.Rank == 0
}

// String renders the individual, eliding the middle of long vectors.
func (ind Individual) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Individual(genes=%s, fitness=%s", formatVector(ind.Genes), formatVector(ind.Fitness))
	if ind.Constraints != nil {
		fmt.Fprintf(&b, ", constraints=%s", formatVector(ind.Constraints))
	}
	if ind.Rank != nil {
		fmt.Fprintf(&b, ", rank=%d", *ind.Rank)
	}
	b.WriteString(")")
	return b.String()
}

// Population holds the row-aligned state of one generation. Genes and
// Fitness are always present; Constraints is nil for unconstrained problems;
// Rank and SurvivalScore are nil until a survival operator has run.
type Population struct {
	Genes         *mat.Dense
	Fitness       *mat.Dense
	Constraints   *mat.Dense
	Rank          []int
	SurvivalScore []float64

	violationTotals []float64
}

// New builds a population from its matrices. Constraints may be nil. Row
// counts of all present matrices must agree.
func New(genes, fitness, constraints *mat.Dense) (Population, error) {
	n, _ := genes.Dims()
	if fn, _ := fitness.Dims(); fn != n {
		return Population{}, fmt.Errorf("fitness has %d rows, genes has %d", fn, n)
	}
	if constraints != nil {
		if cn, _ := constraints.Dims(); cn != n {
			return Population{}, fmt.Errorf("constraints has %d rows, genes has %d", cn, n)
		}
	}
	pop := Population{Genes: genes, Fitness: fitness, Constraints: constraints}
	pop.violationTotals = computeViolationTotals(constraints, n)
	return pop, nil
}

// Len returns the number of individuals.
func (p Population) Len() int {
	n, _ := p.Genes.Dims()
	return n
}

// NumVars returns the gene vector length.
func (p Population) NumVars() int {
	_, v := p.Genes.Dims()
	return v
}

// NumObjectives returns the fitness vector length.
func (p Population) NumObjectives() int {
	_, o := p.Fitness.Dims()
	return o
}

// Get extracts individual i. The returned slices are copies.
func (p Population) Get(i int) Individual {
	ind := Individual{
		Genes:   rowCopy(p.Genes, i),
		Fitness: rowCopy(p.Fitness, i),
	}
	if p.Constraints != nil {
		ind.Constraints = rowCopy(p.Constraints, i)
	}
	if p.Rank != nil {
		r := p.Rank[i]
		ind.Rank = &r
	}
	if p.SurvivalScore != nil {
		s := p.SurvivalScore[i]
		ind.SurvivalScore = &s
	}
	return ind
}

// ViolationTotals returns the per-individual sum of positive constraint
// violations, or nil for unconstrained populations. The slice is shared; do
// not modify it.
func (p Population) ViolationTotals() []float64 {
	return p.violationTotals
}

// IsFeasible reports whether individual i satisfies all constraints.
func (p Population) IsFeasible(i int) bool {
	if p.violationTotals == nil {
		return true
	}
	return p.violationTotals[i] == 0
}

// SetRank attaches survival ranks. len(rank) must equal Len.
func (p *Population) SetRank(rank []int) {
	p.Rank = rank
}

// SetSurvivalScore attaches survival scores. len(score) must equal Len.
func (p *Population) SetSurvivalScore(score []float64) {
	p.SurvivalScore = score
}

// Selected builds a new population from the given row indices, carrying
// every present field through. Indices may repeat.
func (p Population) Selected(indices []int) Population {
	out := Population{
		Genes:   selectRows(p.Genes, indices),
		Fitness: selectRows(p.Fitness, indices),
	}
	if p.Constraints != nil {
		out.Constraints = selectRows(p.Constraints, indices)
	}
	if p.Rank != nil {
		out.Rank = make([]int, len(indices))
		for k, i := range indices {
			out.Rank[k] = p.Rank[i]
		}
	}
	if p.SurvivalScore != nil {
		out.SurvivalScore = make([]float64, len(indices))
		for k, i := range indices {
			out.SurvivalScore[k] = p.SurvivalScore[i]
		}
	}
	if p.violationTotals != nil {
		out.violationTotals = make([]float64, len(indices))
		for k, i := range indices {
			out.violationTotals[k] = p.violationTotals[i]
		}
	}
	return out
}

// Best returns the rank-zero subset, or the whole population when it has not
// been ranked yet.
func (p Population) Best() Population {
	if p.Rank == nil {
		return p
	}
	var indices []int
	for i, r := range p.Rank {
		if r == 0 {
			indices = append(indices, i)
		}
	}
	return p.Selected(indices)
}

// Merge concatenates two populations row-wise. Optional fields must be
// present on both sides or on neither.
func Merge(a, b Population) (Population, error) {
	if (a.Constraints == nil) != (b.Constraints == nil) {
		return Population{}, fmt.Errorf("cannot merge: constraints present on one side only")
	}
	if (a.Rank == nil) != (b.Rank == nil) {
		return Population{}, fmt.Errorf("cannot merge: rank present on one side only")
	}
	if (a.SurvivalScore == nil) != (b.SurvivalScore == nil) {
		return Population{}, fmt.Errorf("cannot merge: survival score present on one side only")
	}
	out := Population{
		Genes:   stack(a.Genes, b.Genes),
		Fitness: stack(a.Fitness, b.Fitness),
	}
	if a.Constraints != nil {
		out.Constraints = stack(a.Constraints, b.Constraints)
	}
	if a.Rank != nil {
		out.Rank = append(append([]int{}, a.Rank...), b.Rank...)
	}
	if a.SurvivalScore != nil {
		out.SurvivalScore = append(append([]float64{}, a.SurvivalScore...), b.SurvivalScore...)
	}
	if a.violationTotals != nil && b.violationTotals != nil {
		out.violationTotals = append(append([]float64{}, a.violationTotals...), b.violationTotals...)
	}
	return out, nil
}

// String renders the gene matrix, eliding the middle rows of large
// populations and the middle elements of long gene vectors.
func (p Population) String() string {
	const edge = 3
	n := p.Len()
	var b strings.Builder
	fmt.Fprintf(&b, "Population(%d individuals, %d vars)\n", n, p.NumVars())
	writeRow := func(i int) {
		fmt.Fprintf(&b, "  %s\n", formatVector(p.Genes.RawRowView(i)))
	}
	if n <= 2*edge {
		for i := 0; i < n; i++ {
			writeRow(i)
		}
		return b.String()
	}
	for i := 0; i < edge; i++ {
		writeRow(i)
	}
	b.WriteString("  ...\n")
	for i := n - edge; i < n; i++ {
		writeRow(i)
	}
	return b.String()
}

// formatVector renders a vector, keeping only the first and last three
// elements of long ones.
func formatVector(v []float64) string {
	const edge = 3
	var b strings.Builder
	b.WriteString("[")
	if len(v) <= 2*edge {
		for i, x := range v {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%v", x)
		}
	} else {
		for i := 0; i < edge; i++ {
			fmt.Fprintf(&b, "%v ", v[i])
		}
		b.WriteString("...")
		for i := len(v) - edge; i < len(v); i++ {
			fmt.Fprintf(&b, " %v", v[i])
		}
	}
	b.WriteString("]")
	return b.String()
}

func violationTotal(constraints []float64) float64 {
	if constraints == nil {
		return 0
	}
	var total float64
	for _, c := range constraints {
		if c > 0 {
			total += c
		}
	}
	total -= FeasibilityTolerance
	if total < 0 {
		return 0
	}
	return total
}

func computeViolationTotals(constraints *mat.Dense, n int) []float64 {
	if constraints == nil {
		return nil
	}
	totals := make([]float64, n)
	for i := range totals {
		totals[i] = violationTotal(constraints.RawRowView(i))
	}
	return totals
}

func rowCopy(m *mat.Dense, i int) []float64 {
	_, c := m.Dims()
	out := make([]float64, c)
	copy(out, m.RawRowView(i))
	return out
}

func selectRows(m *mat.Dense, indices []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for k, i := range indices {
		out.SetRow(k, m.RawRowView(i))
	}
	return out
}

func stack(a, b *mat.Dense) *mat.Dense {
	ar, c := a.Dims()
	br, _ := b.Dims()
	out := mat.NewDense(ar+br, c, nil)
	out.Slice(0, ar, 0, c).(*mat.Dense).Copy(a)
	out.Slice(ar, ar+br, 0, c).(*mat.Dense).Copy(b)
	return out
}
