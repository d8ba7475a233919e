// Package operators defines the genetic variation roles of the engine and
// their built-in implementations. Every operator draws randomness from the
// *rand.Rand it is handed, so a run is reproducible whenever the caller
// threads a single seeded source through all operators in a fixed order.
package operators

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Sampler produces the initial gene matrix for a population.
type Sampler interface {
	Name() string
	Sample(rng *rand.Rand, n, numVars int) *mat.Dense
}

// Crossover recombines one parent pair into two children. Inputs must not
// be modified.
type Crossover interface {
	Name() string
	Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64)
}

// Mutation perturbs one gene vector in place.
type Mutation interface {
	Name() string
	Mutate(rng *rand.Rand, genes []float64)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc struct {
	OpName string
	Fn     func(rng *rand.Rand, n, numVars int) *mat.Dense
}

func (s SamplerFunc) Name() string { return s.OpName }

func (s SamplerFunc) Sample(rng *rand.Rand, n, numVars int) *mat.Dense {
	return s.Fn(rng, n, numVars)
}

// CrossoverFunc adapts a function to the Crossover interface.
type CrossoverFunc struct {
	OpName string
	Fn     func(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64)
}

func (c CrossoverFunc) Name() string { return c.OpName }

func (c CrossoverFunc) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	return c.Fn(rng, parentA, parentB)
}

// MutationFunc adapts a function to the Mutation interface.
type MutationFunc struct {
	OpName string
	Fn     func(rng *rand.Rand, genes []float64)
}

func (m MutationFunc) Name() string { return m.OpName }

func (m MutationFunc) Mutate(rng *rand.Rand, genes []float64) {
	m.Fn(rng, genes)
}
