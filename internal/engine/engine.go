// Package engine drives the generational loop: initialization, offspring
// generation, evaluation, and survival, with a single seeded random source
// threaded through every stochastic stage.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"moea/internal/genetic"
)

// Engine runs one configured optimization. It is not safe for concurrent
// use; create one engine per run.
type Engine struct {
	cfg  Config
	eval evaluator

	pop         genetic.Population
	iterations  int
	initialized bool
}

// New validates the configuration and builds an engine. Rate and count
// violations surface here, before any sampling happens.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Engine{
		cfg: cfg,
		eval: evaluator{
			fitness:        cfg.Fitness,
			constraints:    cfg.Constraints,
			keepInfeasible: cfg.KeepInfeasible,
		},
	}, nil
}

// Run executes the full loop. The context is checked between generations
// only; user functions are never interrupted.
func (e *Engine) Run(ctx context.Context) error {
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	if err := e.initialize(rng); err != nil {
		return err
	}
	e.report(0)

	for iter := 1; iter <= e.cfg.NumIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop, err := e.step(rng, iter)
		if err != nil {
			return err
		}
		e.iterations = iter
		e.report(iter)
		if stop {
			break
		}
		if e.cfg.Terminator != nil && e.cfg.Terminator(iter, e.pop) {
			break
		}
	}
	return nil
}

// Population returns the final population. It fails until Run has
// completed initialization.
func (e *Engine) Population() (genetic.Population, error) {
	if !e.initialized {
		return genetic.Population{}, ErrNotInitialized
	}
	return e.pop, nil
}

// Iterations returns how many generations the last run completed.
func (e *Engine) Iterations() int {
	return e.iterations
}

func (e *Engine) initialize(rng *rand.Rand) error {
	genes := e.cfg.Sampler.Sample(rng, e.cfg.PopulationSize, e.cfg.NumVars)
	if e.cfg.Cleaner != nil {
		keep := e.cfg.Cleaner.Keep(genes, nil)
		if len(keep) < genes.RawMatrix().Rows {
			genes = selectGeneRows(genes, keep)
		}
	}
	pop, err := e.eval.evaluate(genes)
	if err != nil {
		return fmt.Errorf("initialization: %w", err)
	}
	ranked, err := e.cfg.Survivor.Survive(pop, pop.Len())
	if err != nil {
		return fmt.Errorf("initialization: %w", err)
	}
	e.pop = ranked
	e.initialized = true
	return nil
}

// step runs one generation. It returns stop=true on a warned early stop.
func (e *Engine) step(rng *rand.Rand, iter int) (bool, error) {
	offspring, err := e.evolve(rng, e.pop, e.cfg.NumOffspring)
	if errors.Is(err, ErrEmptyMating) {
		fmt.Fprintf(e.cfg.Output, "warning: no offspring generated at iteration %d, stopping early\n", iter)
		return true, nil
	}
	if err != nil {
		return false, err
	}

	combined := stackGenes(e.pop.Genes, offspring)
	pop, err := e.eval.evaluate(combined)
	if err != nil {
		return false, fmt.Errorf("iteration %d: %w", iter, err)
	}
	n := e.cfg.PopulationSize
	if pop.Len() < n {
		n = pop.Len()
	}
	survived, err := e.cfg.Survivor.Survive(pop, n)
	if err != nil {
		return false, fmt.Errorf("iteration %d: %w", iter, err)
	}
	e.pop = survived
	return false, nil
}

// report prints the per-objective minima of the current population and
// notifies the observer.
func (e *Engine) report(iter int) {
	if e.cfg.Verbose {
		numObj := e.pop.NumObjectives()
		fmt.Fprintf(e.cfg.Output, "iteration %d:", iter)
		for obj := 0; obj < numObj; obj++ {
			minVal := e.pop.Fitness.At(0, obj)
			for i := 1; i < e.pop.Len(); i++ {
				if v := e.pop.Fitness.At(i, obj); v < minVal {
					minVal = v
				}
			}
			fmt.Fprintf(e.cfg.Output, " min_f%d=%g", obj, minVal)
		}
		fmt.Fprintln(e.cfg.Output)
	}
	if e.cfg.Observer != nil {
		e.cfg.Observer(iter, e.pop)
	}
}

func selectGeneRows(m *mat.Dense, indices []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for k, i := range indices {
		out.SetRow(k, m.RawRowView(i))
	}
	return out
}

func stackGenes(a, b *mat.Dense) *mat.Dense {
	ar, c := a.Dims()
	br, _ := b.Dims()
	out := mat.NewDense(ar+br, c, nil)
	out.Slice(0, ar, 0, c).(*mat.Dense).Copy(a)
	out.Slice(ar, ar+br, 0, c).(*mat.Dense).Copy(b)
	return out
}
