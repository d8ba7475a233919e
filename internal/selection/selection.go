// Package selection picks parent pairs for mating. The tournament selector
// duels individuals on feasibility, then rank, then survival score, drawing
// participants from shuffled permutations so every individual enters a duel
// before any individual enters twice.
package selection

import (
	"math/rand"

	"moea/internal/genetic"
)

// Selector produces numPairs parent index pairs from a ranked population.
type Selector interface {
	Name() string
	Select(rng *rand.Rand, pop genetic.Population, numPairs int) [][2]int
}

// Tournament is a binary tournament on feasibility, rank and survival
// score. Ties go to the second participant.
type Tournament struct{}

func (Tournament) Name() string { return "tournament" }

func (Tournament) Select(rng *rand.Rand, pop genetic.Population, numPairs int) [][2]int {
	needed := 2 * numPairs
	participants := permutationStream(rng, pop.Len(), 2*needed)
	winners := make([]int, needed)
	for k := 0; k < needed; k++ {
		winners[k] = duel(pop, participants[2*k], participants[2*k+1])
	}
	pairs := make([][2]int, numPairs)
	for k := range pairs {
		pairs[k] = [2]int{winners[2*k], winners[2*k+1]}
	}
	return pairs
}

// Random pairs individuals uniformly with no dueling.
type Random struct{}

func (Random) Name() string { return "random" }

func (Random) Select(rng *rand.Rand, pop genetic.Population, numPairs int) [][2]int {
	participants := permutationStream(rng, pop.Len(), 2*numPairs)
	pairs := make([][2]int, numPairs)
	for k := range pairs {
		pairs[k] = [2]int{participants[2*k], participants[2*k+1]}
	}
	return pairs
}

func permutationStream(rng *rand.Rand, n, size int) []int {
	out := make([]int, 0, size+n)
	for len(out) < size {
		out = append(out, rng.Perm(n)...)
	}
	return out[:size]
}

func duel(pop genetic.Population, a, b int) int {
	af, bf := pop.IsFeasible(a), pop.IsFeasible(b)
	if af != bf {
		if af {
			return a
		}
		return b
	}
	if !af {
		totals := pop.ViolationTotals()
		if totals[a] < totals[b] {
			return a
		}
		return b
	}
	if pop.Rank != nil && pop.Rank[a] != pop.Rank[b] {
		if pop.Rank[a] < pop.Rank[b] {
			return a
		}
		return b
	}
	if pop.SurvivalScore != nil && pop.SurvivalScore[a] > pop.SurvivalScore[b] {
		return a
	}
	return b
}
