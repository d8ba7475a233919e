package operators

import (
	"math"
	"math/rand"
)

// SinglePoint cuts both parents at one random point in [1, len) and swaps
// the tails. Single-gene parents have no cut point and pass through
// unchanged.
type SinglePoint struct{}

func (SinglePoint) Name() string { return "single_point" }

func (SinglePoint) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	if n < 2 {
		return append([]float64{}, parentA...), append([]float64{}, parentB...)
	}
	point := 1 + rng.Intn(n-1)
	childA := make([]float64, n)
	childB := make([]float64, n)
	copy(childA, parentA[:point])
	copy(childA[point:], parentB[point:])
	copy(childB, parentB[:point])
	copy(childB[point:], parentA[point:])
	return childA, childB
}

// TwoPoint swaps the segment between two random cut points. Single-gene
// parents pass through unchanged.
type TwoPoint struct{}

func (TwoPoint) Name() string { return "two_point" }

func (TwoPoint) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	if n < 2 {
		return append([]float64{}, parentA...), append([]float64{}, parentB...)
	}
	lo := 1 + rng.Intn(n-1)
	hi := 1 + rng.Intn(n-1)
	if lo > hi {
		lo, hi = hi, lo
	}
	childA := append([]float64{}, parentA...)
	childB := append([]float64{}, parentB...)
	copy(childA[lo:hi], parentB[lo:hi])
	copy(childB[lo:hi], parentA[lo:hi])
	return childA, childB
}

// Uniform swaps each gene independently with probability 0.5.
type Uniform struct{}

func (Uniform) Name() string { return "uniform" }

func (Uniform) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	childA := make([]float64, n)
	childB := make([]float64, n)
	for j := 0; j < n; j++ {
		if rng.Float64() < 0.5 {
			childA[j], childB[j] = parentB[j], parentA[j]
		} else {
			childA[j], childB[j] = parentA[j], parentB[j]
		}
	}
	return childA, childB
}

// Arithmetic blends the parents with a random weight drawn once per pair.
type Arithmetic struct{}

func (Arithmetic) Name() string { return "arithmetic" }

func (Arithmetic) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	alpha := rng.Float64()
	childA := make([]float64, n)
	childB := make([]float64, n)
	for j := 0; j < n; j++ {
		childA[j] = alpha*parentA[j] + (1-alpha)*parentB[j]
		childB[j] = (1-alpha)*parentA[j] + alpha*parentB[j]
	}
	return childA, childB
}

// SimulatedBinary is the SBX operator for real-valued genes. Eta is the
// distribution index; larger values keep children closer to their parents.
type SimulatedBinary struct {
	Eta float64
}

func (SimulatedBinary) Name() string { return "simulated_binary" }

func (c SimulatedBinary) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	childA := append([]float64{}, parentA...)
	childB := append([]float64{}, parentB...)
	for j := 0; j < n; j++ {
		if rng.Float64() >= 0.5 {
			continue
		}
		u := rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(c.Eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(c.Eta+1))
		}
		a, b := parentA[j], parentB[j]
		childA[j] = 0.5 * ((1+beta)*a + (1-beta)*b)
		childB[j] = 0.5 * ((1-beta)*a + (1+beta)*b)
	}
	return childA, childB
}

// Order is the OX operator for permutation genes: a random segment is kept
// from the first parent and the remaining positions are filled with the
// other parent's genes in their original order.
type Order struct{}

func (Order) Name() string { return "order" }

func (Order) Cross(rng *rand.Rand, parentA, parentB []float64) ([]float64, []float64) {
	n := len(parentA)
	lo := rng.Intn(n)
	hi := lo + 1 + rng.Intn(n-lo)
	return orderChild(parentA, parentB, lo, hi), orderChild(parentB, parentA, lo, hi)
}

func orderChild(keep, fill []float64, lo, hi int) []float64 {
	n := len(keep)
	child := make([]float64, n)
	used := make(map[float64]bool, hi-lo)
	for j := lo; j < hi; j++ {
		child[j] = keep[j]
		used[keep[j]] = true
	}
	at := hi % n
	for k := 0; k < n; k++ {
		v := fill[(hi+k)%n]
		if used[v] {
			continue
		}
		child[at] = v
		at = (at + 1) % n
		if at == lo {
			break
		}
	}
	return child
}
