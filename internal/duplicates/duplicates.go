// Package duplicates removes repeated individuals from gene matrices.
// Cleaners keep the first occurrence in row order and may additionally drop
// rows that already appear in a reference population.
package duplicates

import (
	"encoding/binary"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Cleaner decides which rows of a gene matrix survive deduplication.
type Cleaner interface {
	Name() string
	// Keep returns the indices of rows to keep, in ascending order. A row is
	// dropped when it duplicates an earlier kept row or any row of
	// reference. Reference may be nil.
	Keep(genes, reference *mat.Dense) []int
}

// Exact drops rows that are bitwise identical.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (Exact) Keep(genes, reference *mat.Dense) []int {
	seen := make(map[string]bool)
	if reference != nil {
		rn, _ := reference.Dims()
		for i := 0; i < rn; i++ {
			seen[rowKey(reference.RawRowView(i))] = true
		}
	}
	n, _ := genes.Dims()
	keep := make([]int, 0, n)
	for i := 0; i < n; i++ {
		key := rowKey(genes.RawRowView(i))
		if seen[key] {
			continue
		}
		seen[key] = true
		keep = append(keep, i)
	}
	return keep
}

// Close drops rows whose Euclidean distance to a kept or reference row is
// at most Epsilon.
type Close struct {
	Epsilon float64
}

func (Close) Name() string { return "close" }

func (c Close) Keep(genes, reference *mat.Dense) []int {
	n, _ := genes.Dims()
	var refRows [][]float64
	if reference != nil {
		rn, _ := reference.Dims()
		for i := 0; i < rn; i++ {
			refRows = append(refRows, reference.RawRowView(i))
		}
	}
	keep := make([]int, 0, n)
	var kept [][]float64
	for i := 0; i < n; i++ {
		row := genes.RawRowView(i)
		if withinAny(row, refRows, c.Epsilon) || withinAny(row, kept, c.Epsilon) {
			continue
		}
		kept = append(kept, row)
		keep = append(keep, i)
	}
	return keep
}

func withinAny(row []float64, others [][]float64, eps float64) bool {
	for _, other := range others {
		if floats.Distance(row, other, 2) <= eps {
			return true
		}
	}
	return false
}

func rowKey(row []float64) string {
	buf := make([]byte, 8*len(row))
	for j, v := range row {
		binary.LittleEndian.PutUint64(buf[8*j:], math.Float64bits(v))
	}
	return string(buf)
}
