package survival

import (
	"fmt"
	"sort"

	"moea/internal/genetic"
)

// RankCrowding is the NSGA-II survival operator: whole fronts survive while
// they fit, and the splitting front is truncated by descending crowding
// distance.
type RankCrowding struct{}

func (RankCrowding) Name() string { return "rank_crowding" }

func (RankCrowding) Survive(pop genetic.Population, n int) (genetic.Population, error) {
	if pop.Len() < n {
		return genetic.Population{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientPopulation, pop.Len(), n)
	}

	fronts := FastNonDominatedSort(pop)
	var survivors []int
	var ranks []int
	var scores []float64

	for r, front := range fronts {
		crowding := CrowdingDistance(pop.Fitness, front)
		if len(survivors)+len(front) <= n {
			survivors = append(survivors, front...)
			for range front {
				ranks = append(ranks, r)
			}
			scores = append(scores, crowding...)
			if len(survivors) == n {
				break
			}
			continue
		}

		// Splitting front: most crowded-out first, stable on row order.
		order := make([]int, len(front))
		for k := range order {
			order[k] = k
		}
		sort.SliceStable(order, func(a, b int) bool {
			return crowding[order[a]] > crowding[order[b]]
		})
		for _, k := range order[:n-len(survivors)] {
			survivors = append(survivors, front[k])
			ranks = append(ranks, r)
			scores = append(scores, crowding[k])
		}
		break
	}

	out := pop.Selected(survivors)
	out.SetRank(ranks)
	out.SetSurvivalScore(scores)
	return out, nil
}
