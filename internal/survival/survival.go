// Package survival ranks merged populations and selects the individuals
// that carry on to the next generation. Dominance is constraint-aware:
// feasible individuals always dominate infeasible ones, and between two
// infeasible individuals the smaller violation total wins. Ties at every
// stage break by input row order, which keeps runs reproducible.
package survival

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"moea/internal/genetic"
)

// ErrInsufficientPopulation reports a survival request for more individuals
// than the population holds. Reaching it indicates a driver bug.
var ErrInsufficientPopulation = errors.New("population smaller than requested survivor count")

// Operator reduces a population to exactly n survivors, assigning ranks and
// survival scores along the way.
type Operator interface {
	Name() string
	Survive(pop genetic.Population, n int) (genetic.Population, error)
}

// Dominates reports whether individual i dominates individual j under
// constraint-aware Pareto dominance.
func Dominates(pop genetic.Population, i, j int) bool {
	totals := pop.ViolationTotals()
	if totals != nil {
		vi, vj := totals[i], totals[j]
		if vi == 0 && vj > 0 {
			return true
		}
		if vi > 0 && vj == 0 {
			return false
		}
		if vi > 0 && vj > 0 {
			return vi < vj
		}
	}
	return dominatesFitness(pop.Fitness.RawRowView(i), pop.Fitness.RawRowView(j))
}

func dominatesFitness(a, b []float64) bool {
	strict := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			strict = true
		}
	}
	return strict
}

// FastNonDominatedSort partitions the population into Pareto fronts. Each
// front lists row indices in ascending order; front 0 is non-dominated.
func FastNonDominatedSort(pop genetic.Population) [][]int {
	n := pop.Len()
	dominated := make([][]int, n)
	dominationCount := make([]int, n)
	var first []int

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if Dominates(pop, i, j) {
				dominated[i] = append(dominated[i], j)
			} else if Dominates(pop, j, i) {
				dominationCount[i]++
			}
		}
		if dominationCount[i] == 0 {
			first = append(first, i)
		}
	}

	fronts := [][]int{first}
	for {
		var next []int
		for _, i := range fronts[len(fronts)-1] {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					next = append(next, j)
				}
			}
		}
		if len(next) == 0 {
			return fronts
		}
		sort.Ints(next)
		fronts = append(fronts, next)
	}
}

// CrowdingDistance computes the crowding distance of each member of a
// front. Boundary individuals get +Inf; interior individuals sum their
// normalized neighbor gaps over all objectives. Objectives with zero spread
// contribute nothing.
func CrowdingDistance(fitness *mat.Dense, front []int) []float64 {
	m := len(front)
	dist := make([]float64, m)
	if m <= 2 {
		for k := range dist {
			dist[k] = math.Inf(1)
		}
		return dist
	}
	_, numObj := fitness.Dims()
	order := make([]int, m)
	for obj := 0; obj < numObj; obj++ {
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return fitness.At(front[order[a]], obj) < fitness.At(front[order[b]], obj)
		})
		lo := fitness.At(front[order[0]], obj)
		hi := fitness.At(front[order[m-1]], obj)
		dist[order[0]] = math.Inf(1)
		dist[order[m-1]] = math.Inf(1)
		if hi == lo {
			continue
		}
		for k := 1; k < m-1; k++ {
			gap := fitness.At(front[order[k+1]], obj) - fitness.At(front[order[k-1]], obj)
			dist[order[k]] += gap / (hi - lo)
		}
	}
	return dist
}

// ranksFromFronts expands a front partition into a per-row rank vector.
func ranksFromFronts(fronts [][]int, n int) []int {
	rank := make([]int, n)
	for r, front := range fronts {
		for _, i := range front {
			rank[i] = r
		}
	}
	return rank
}
