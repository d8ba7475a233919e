package engine

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"moea/internal/constraints"
	"moea/internal/genetic"
)

// evaluator turns raw gene matrices into evaluated populations, applying
// the constraint set and optionally dropping infeasible individuals.
type evaluator struct {
	fitness        FitnessFunc
	constraints    *constraints.Set
	keepInfeasible bool
}

func (ev *evaluator) evaluate(genes *mat.Dense) (genetic.Population, error) {
	n, _ := genes.Dims()
	fitness := ev.fitness(genes)
	if fr, _ := fitness.Dims(); fr != n {
		return genetic.Population{}, fmt.Errorf("fitness function returned %d rows for %d individuals", fr, n)
	}

	var cm *mat.Dense
	if ev.constraints != nil {
		var err error
		cm, err = ev.constraints.Evaluate(genes)
		if err != nil {
			return genetic.Population{}, err
		}
	}

	pop, err := genetic.New(genes, fitness, cm)
	if err != nil {
		return genetic.Population{}, err
	}

	if ev.keepInfeasible || cm == nil {
		return pop, nil
	}
	var feasible []int
	for i := 0; i < pop.Len(); i++ {
		if pop.IsFeasible(i) {
			feasible = append(feasible, i)
		}
	}
	if len(feasible) == 0 {
		return genetic.Population{}, ErrNoFeasibleIndividuals
	}
	return pop.Selected(feasible), nil
}

// RowFitness adapts a per-individual fitness function into a FitnessFunc
// that evaluates rows on a worker pool. Results are written back by row
// index, so the output never depends on scheduling.
func RowFitness(workers int, fn func(genes []float64) []float64) FitnessFunc {
	if workers < 1 {
		workers = 1
	}
	return func(genes *mat.Dense) *mat.Dense {
		n, v := genes.Dims()
		type result struct {
			row int
			fit []float64
		}
		jobs := make(chan int, n)
		results := make(chan result, n)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					row := make([]float64, v)
					copy(row, genes.RawRowView(i))
					results <- result{row: i, fit: fn(row)}
				}
			}()
		}
		for i := 0; i < n; i++ {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)

		var out *mat.Dense
		for r := range results {
			if out == nil {
				out = mat.NewDense(n, len(r.fit), nil)
			}
			out.SetRow(r.row, r.fit)
		}
		return out
	}
}
