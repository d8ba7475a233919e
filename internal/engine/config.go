package engine

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"

	"moea/internal/constraints"
	"moea/internal/duplicates"
	"moea/internal/genetic"
	"moea/internal/operators"
	"moea/internal/selection"
	"moea/internal/survival"
)

var (
	// ErrInvalidParameter reports a configuration rejected at construction.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoFeasibleIndividuals reports that infeasibility filtering removed
	// the whole population.
	ErrNoFeasibleIndividuals = errors.New("no feasible individuals")
	// ErrEmptyMating reports that mating produced no offspring after all
	// retries. The driver downgrades it to an early stop.
	ErrEmptyMating = errors.New("mating produced no offspring")
	// ErrNotInitialized reports access to the population before a run.
	ErrNotInitialized = errors.New("engine has not been run")
)

// FitnessFunc maps a gene matrix to a fitness matrix with the same number
// of rows. Smaller fitness values are better.
type FitnessFunc func(genes *mat.Dense) *mat.Dense

// Observer is called after every survival step with the surviving
// population. The population must not be modified.
type Observer func(iteration int, pop genetic.Population)

// Terminator reports convergence. When it returns true the run stops
// before the iteration budget is spent.
type Terminator func(iteration int, pop genetic.Population) bool

// Config assembles a run. Fitness, Sampler, Crossover and Mutation are
// required; Selector defaults to a binary tournament, Survivor to
// rank-and-crowding survival. Cleaner and Constraints are optional.
// LowerBound and UpperBound, when set, clamp offspring genes after
// variation.
type Config struct {
	Fitness     FitnessFunc
	Constraints *constraints.Set

	Sampler   operators.Sampler
	Crossover operators.Crossover
	Mutation  operators.Mutation
	Selector  selection.Selector
	Survivor  survival.Operator
	Cleaner   duplicates.Cleaner

	NumVars        int
	PopulationSize int
	NumOffspring   int
	NumIterations  int
	CrossoverRate  float64
	MutationRate   float64
	KeepInfeasible bool

	LowerBound *float64
	UpperBound *float64

	Seed       int64
	Verbose    bool
	Output     io.Writer
	Observer   Observer
	Terminator Terminator
}

// Bound ordering is deliberately not validated here; a lower bound above
// the upper bound clamps every gene to the upper bound.
func (c *Config) validate() error {
	if c.Fitness == nil {
		return fmt.Errorf("%w: fitness function is required", ErrInvalidParameter)
	}
	if c.Sampler == nil {
		return fmt.Errorf("%w: sampler is required", ErrInvalidParameter)
	}
	if c.Crossover == nil {
		return fmt.Errorf("%w: crossover operator is required", ErrInvalidParameter)
	}
	if c.Mutation == nil {
		return fmt.Errorf("%w: mutation operator is required", ErrInvalidParameter)
	}
	if err := checkProbability("Mutation rate", c.MutationRate); err != nil {
		return err
	}
	if err := checkProbability("Crossover rate", c.CrossoverRate); err != nil {
		return err
	}
	if err := checkPositive("Number of variables", c.NumVars); err != nil {
		return err
	}
	if err := checkPositive("Population size", c.PopulationSize); err != nil {
		return err
	}
	if err := checkPositive("Number of offsprings", c.NumOffspring); err != nil {
		return err
	}
	if err := checkPositive("Number of iterations", c.NumIterations); err != nil {
		return err
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Selector == nil {
		c.Selector = selection.Tournament{}
	}
	if c.Survivor == nil {
		c.Survivor = survival.RankCrowding{}
	}
	if c.Output == nil {
		c.Output = io.Discard
	}
}

func checkProbability(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %s must be between 0 and 1, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}

func checkPositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0, got %d", ErrInvalidParameter, name, v)
	}
	return nil
}
