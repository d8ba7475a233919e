package operators

import "math/rand"

// Gaussian perturbs each gene with probability GeneRate by adding a normal
// deviate with standard deviation Sigma.
type Gaussian struct {
	GeneRate float64
	Sigma    float64
}

func (Gaussian) Name() string { return "gaussian" }

func (m Gaussian) Mutate(rng *rand.Rand, genes []float64) {
	for j := range genes {
		if rng.Float64() < m.GeneRate {
			genes[j] += rng.NormFloat64() * m.Sigma
		}
	}
}

// BitFlip flips each 0/1 gene with probability GeneRate.
type BitFlip struct {
	GeneRate float64
}

func (BitFlip) Name() string { return "bit_flip" }

func (m BitFlip) Mutate(rng *rand.Rand, genes []float64) {
	for j := range genes {
		if rng.Float64() < m.GeneRate {
			genes[j] = 1 - genes[j]
		}
	}
}

// UniformReal resamples each gene uniformly from [Min, Max) with
// probability GeneRate.
type UniformReal struct {
	GeneRate float64
	Min, Max float64
}

func (UniformReal) Name() string { return "uniform_real" }

func (m UniformReal) Mutate(rng *rand.Rand, genes []float64) {
	span := m.Max - m.Min
	for j := range genes {
		if rng.Float64() < m.GeneRate {
			genes[j] = m.Min + span*rng.Float64()
		}
	}
}

// Swap exchanges two random positions, preserving permutation genes.
type Swap struct{}

func (Swap) Name() string { return "swap" }

func (Swap) Mutate(rng *rand.Rand, genes []float64) {
	n := len(genes)
	if n < 2 {
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n)
	genes[i], genes[j] = genes[j], genes[i]
}

// Inversion reverses a random segment, preserving permutation genes.
type Inversion struct{}

func (Inversion) Name() string { return "inversion" }

func (Inversion) Mutate(rng *rand.Rand, genes []float64) {
	n := len(genes)
	if n < 2 {
		return
	}
	lo := rng.Intn(n)
	hi := lo + 1 + rng.Intn(n-lo)
	for l, r := lo, hi-1; l < r; l, r = l+1, r-1 {
		genes[l], genes[r] = genes[r], genes[l]
	}
}
