package operators

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// RandomFloat samples every gene uniformly from [Min, Max).
type RandomFloat struct {
	Min, Max float64
}

func (RandomFloat) Name() string { return "random_float" }

func (s RandomFloat) Sample(rng *rand.Rand, n, numVars int) *mat.Dense {
	out := mat.NewDense(n, numVars, nil)
	span := s.Max - s.Min
	for i := 0; i < n; i++ {
		for j := 0; j < numVars; j++ {
			out.Set(i, j, s.Min+span*rng.Float64())
		}
	}
	return out
}

// RandomInt samples integer-valued genes uniformly from [Min, Max).
type RandomInt struct {
	Min, Max int
}

func (RandomInt) Name() string { return "random_int" }

func (s RandomInt) Sample(rng *rand.Rand, n, numVars int) *mat.Dense {
	out := mat.NewDense(n, numVars, nil)
	span := s.Max - s.Min
	for i := 0; i < n; i++ {
		for j := 0; j < numVars; j++ {
			out.Set(i, j, float64(s.Min+rng.Intn(span)))
		}
	}
	return out
}

// RandomBinary samples 0/1 genes with equal probability.
type RandomBinary struct{}

func (RandomBinary) Name() string { return "random_binary" }

func (RandomBinary) Sample(rng *rand.Rand, n, numVars int) *mat.Dense {
	out := mat.NewDense(n, numVars, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < numVars; j++ {
			out.Set(i, j, float64(rng.Intn(2)))
		}
	}
	return out
}

// Permutation samples each row as a random permutation of 0..numVars-1.
type Permutation struct{}

func (Permutation) Name() string { return "permutation" }

func (Permutation) Sample(rng *rand.Rand, n, numVars int) *mat.Dense {
	out := mat.NewDense(n, numVars, nil)
	for i := 0; i < n; i++ {
		for j, v := range rng.Perm(numVars) {
			out.Set(i, j, float64(v))
		}
	}
	return out
}
