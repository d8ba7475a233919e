package survival

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"moea/internal/genetic"
)

// KnnDensity is the SPEA2 survival operator. Raw fitness combines a
// front-rank domination index with a k-nearest-neighbor density estimate in
// objective space; non-dominated individuals are padded with the best
// dominated ones or truncated by isolation.
type KnnDensity struct{}

func (KnnDensity) Name() string { return "knn_density" }

func (KnnDensity) Survive(pop genetic.Population, n int) (genetic.Population, error) {
	total := pop.Len()
	if total < n {
		return genetic.Population{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPopulation, total, n)
	}

	dm := distanceMatrix(pop)
	density := knnDensities(dm)
	raw := rawFitness(pop)
	for i := range raw {
		raw[i] += density[i]
	}

	var nonDominated, rest []int
	for i := 0; i < total; i++ {
		if raw[i] < 1 {
			nonDominated = append(nonDominated, i)
		} else {
			rest = append(rest, i)
		}
	}

	var survivors []int
	switch {
	case len(nonDominated) == n:
		survivors = nonDominated
	case len(nonDominated) < n:
		sort.SliceStable(rest, func(a, b int) bool {
			return raw[rest[a]] < raw[rest[b]]
		})
		survivors = append(nonDominated, rest[:n-len(nonDominated)]...)
	default:
		// Too many non-dominated: keep the ones most isolated in the full
		// objective space.
		isolation := make([]float64, len(nonDominated))
		for k, i := range nonDominated {
			isolation[k] = nearestNeighborDistance(dm, i)
		}
		order := make([]int, len(nonDominated))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return isolation[order[a]] > isolation[order[b]]
		})
		picked := append([]int{}, order[:n]...)
		sort.Ints(picked)
		for _, k := range picked {
			survivors = append(survivors, nonDominated[k])
		}
	}

	out := pop.Selected(survivors)
	fronts := FastNonDominatedSort(out)
	out.SetRank(ranksFromFronts(fronts, out.Len()))
	scores := make([]float64, len(survivors))
	for k, i := range survivors {
		scores[k] = -raw[i]
	}
	out.SetSurvivalScore(scores)
	return out, nil
}

// rawFitness computes the SPEA2 R values as domination indices: each
// individual's R is its non-dominated-sort front rank, so the first front
// sits at zero.
func rawFitness(pop genetic.Population) []float64 {
	ranks := ranksFromFronts(FastNonDominatedSort(pop), pop.Len())
	raw := make([]float64, len(ranks))
	for i, r := range ranks {
		raw[i] = float64(r)
	}
	return raw
}

// knnDensities maps a pairwise distance matrix to SPEA2 densities
// 1/(sigma_k+2), with sigma_k the k-th nearest neighbor distance and
// k = floor(sqrt(N)).
func knnDensities(dm [][]float64) []float64 {
	n := len(dm)
	k := int(math.Sqrt(float64(n)))
	if k >= n {
		k = n - 1
	}
	out := make([]float64, n)
	for i, row := range dm {
		sorted := append([]float64{}, row...)
		sort.Float64s(sorted)
		// sorted[0] is the self distance.
		sigma := sorted[k]
		out[i] = 1 / (sigma + 2)
	}
	return out
}

func distanceMatrix(pop genetic.Population) [][]float64 {
	n := pop.Len()
	dm := make([][]float64, n)
	for i := range dm {
		dm[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(pop.Fitness.RawRowView(i), pop.Fitness.RawRowView(j), 2)
			dm[i][j] = d
			dm[j][i] = d
		}
	}
	return dm
}

func nearestNeighborDistance(dm [][]float64, i int) float64 {
	nearest := math.Inf(1)
	for j, d := range dm[i] {
		if j == i {
			continue
		}
		if d < nearest {
			nearest = d
		}
	}
	return nearest
}
