package engine

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"moea/internal/genetic"
)

// maxMatingIterations bounds the retry loop that refills the offspring
// batch when deduplication discards candidates.
const maxMatingIterations = 200

// evolve produces up to target offspring gene rows from the current
// population. Each pass selects parent pairs, applies rate-gated crossover
// and mutation, clamps to bounds, and drops candidates that duplicate the
// parents or the batch so far. It fails with ErrEmptyMating only when every
// pass produced nothing.
func (e *Engine) evolve(rng *rand.Rand, pop genetic.Population, target int) (*mat.Dense, error) {
	numVars := pop.NumVars()
	var batch [][]float64

	for iter := 0; iter < maxMatingIterations && len(batch) < target; iter++ {
		remaining := target - len(batch)
		numPairs := (remaining + 1) / 2
		pairs := e.cfg.Selector.Select(rng, pop, numPairs)

		candidates := make([][]float64, 0, 2*numPairs)
		for _, pair := range pairs {
			a := pop.Get(pair[0]).Genes
			b := pop.Get(pair[1]).Genes
			var ca, cb []float64
			if rng.Float64() < e.cfg.CrossoverRate {
				ca, cb = e.cfg.Crossover.Cross(rng, a, b)
			} else {
				ca, cb = a, b
			}
			candidates = append(candidates, ca, cb)
		}
		for _, child := range candidates {
			if rng.Float64() < e.cfg.MutationRate {
				e.cfg.Mutation.Mutate(rng, child)
			}
			e.clamp(child)
		}

		kept := e.dedupe(candidates, pop.Genes, batch)
		for _, child := range kept {
			if len(batch) == target {
				break
			}
			batch = append(batch, child)
		}
	}

	if len(batch) == 0 {
		return nil, ErrEmptyMating
	}
	out := mat.NewDense(len(batch), numVars, nil)
	for i, row := range batch {
		out.SetRow(i, row)
	}
	return out, nil
}

func (e *Engine) dedupe(candidates [][]float64, parents *mat.Dense, batch [][]float64) [][]float64 {
	if e.cfg.Cleaner == nil {
		return candidates
	}
	numVars := e.cfg.NumVars
	genes := mat.NewDense(len(candidates), numVars, nil)
	for i, row := range candidates {
		genes.SetRow(i, row)
	}
	pn, _ := parents.Dims()
	reference := mat.NewDense(pn+len(batch), numVars, nil)
	reference.Slice(0, pn, 0, numVars).(*mat.Dense).Copy(parents)
	for i, row := range batch {
		reference.SetRow(pn+i, row)
	}
	keep := e.cfg.Cleaner.Keep(genes, reference)
	kept := make([][]float64, 0, len(keep))
	for _, i := range keep {
		kept = append(kept, candidates[i])
	}
	return kept
}

func (e *Engine) clamp(genes []float64) {
	if e.cfg.LowerBound != nil {
		for j, g := range genes {
			if g < *e.cfg.LowerBound {
				genes[j] = *e.cfg.LowerBound
			}
		}
	}
	if e.cfg.UpperBound != nil {
		for j, g := range genes {
			if g > *e.cfg.UpperBound {
				genes[j] = *e.cfg.UpperBound
			}
		}
	}
}
