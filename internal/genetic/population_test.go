package genetic

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestNewRejectsRowMismatch(t *testing.T) {
	genes := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	fitness := mat.NewDense(3, 1, []float64{1, 2, 3})
	if _, err := New(genes, fitness, nil); err == nil {
		t.Fatalf("expected row mismatch error")
	}
}

func TestFeasibility(t *testing.T) {
	genes := mat.NewDense(3, 1, []float64{1, 2, 3})
	fitness := mat.NewDense(3, 1, []float64{1, 2, 3})
	constraints := mat.NewDense(3, 2, []float64{
		-1, 0, // satisfied
		0.5, -2, // violated
		1e-7, -1e-7, // within tolerance
	})
	pop, err := New(genes, fitness, constraints)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []bool{true, false, true}
	for i, w := range want {
		if got := pop.IsFeasible(i); got != w {
			t.Fatalf("IsFeasible(%d) = %v, want %v", i, got, w)
		}
	}
	totals := pop.ViolationTotals()
	if totals[0] != 0 || totals[2] != 0 {
		t.Fatalf("feasible individuals must have zero violation total, got %v", totals)
	}
	if totals[1] <= 0 {
		t.Fatalf("violated individual must have positive total, got %v", totals[1])
	}
}

func TestViolationTotalSumsBeforeTolerance(t *testing.T) {
	genes := mat.NewDense(2, 1, []float64{1, 2})
	fitness := mat.NewDense(2, 1, []float64{1, 2})
	// Each element sits below the tolerance, but their sums straddle it.
	constraints := mat.NewDense(2, 3, []float64{
		4e-7, 4e-7, 4e-7,
		3e-7, 3e-7, 3e-7,
	})
	pop, err := New(genes, fitness, constraints)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if pop.IsFeasible(0) {
		t.Fatalf("summed violations above tolerance must be infeasible")
	}
	if !pop.IsFeasible(1) {
		t.Fatalf("summed violations below tolerance must be feasible")
	}
	totals := pop.ViolationTotals()
	if math.Abs(totals[0]-2e-7) > 1e-15 {
		t.Fatalf("violation total = %v, want 2e-7", totals[0])
	}
}

func TestUnconstrainedAlwaysFeasible(t *testing.T) {
	genes := mat.NewDense(2, 1, []float64{1, 2})
	fitness := mat.NewDense(2, 1, []float64{1, 2})
	pop, err := New(genes, fitness, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < pop.Len(); i++ {
		if !pop.IsFeasible(i) {
			t.Fatalf("individual %d should be feasible", i)
		}
	}
	if pop.ViolationTotals() != nil {
		t.Fatalf("unconstrained population must have nil violation totals")
	}
}

func TestBestUsesRankZero(t *testing.T) {
	genes := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	fitness := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
	pop, err := New(genes, fitness, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Unranked: everyone is best.
	if got := pop.Best().Len(); got != 4 {
		t.Fatalf("unranked Best len = %d, want 4", got)
	}

	pop.SetRank([]int{0, 1, 0, 2})
	best := pop.Best()
	if best.Len() != 2 {
		t.Fatalf("Best len = %d, want 2", best.Len())
	}
	wantGenes := []float64{0, 2}
	for i, w := range wantGenes {
		if got := best.Genes.At(i, 0); got != w {
			t.Fatalf("best gene %d = %v, want %v", i, got, w)
		}
	}
}

func TestGetCopiesAndCarriesOptionals(t *testing.T) {
	genes := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	fitness := mat.NewDense(2, 1, []float64{5, 6})
	pop, err := New(genes, fitness, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pop.SetRank([]int{0, 1})
	pop.SetSurvivalScore([]float64{1.5, 0.5})

	ind := pop.Get(1)
	if diff := cmp.Diff([]float64{3, 4}, ind.Genes); diff != "" {
		t.Fatalf("genes mismatch (-want +got):\n%s", diff)
	}
	if ind.Rank == nil || *ind.Rank != 1 {
		t.Fatalf("rank not carried: %v", ind.Rank)
	}
	if ind.SurvivalScore == nil || *ind.SurvivalScore != 0.5 {
		t.Fatalf("survival score not carried: %v", ind.SurvivalScore)
	}
	if ind.IsBest() {
		t.Fatalf("rank 1 individual reported as best")
	}

	ind.Genes[0] = 99
	if pop.Genes.At(1, 0) != 3 {
		t.Fatalf("Get must copy genes")
	}
}

func TestMergeConcatenatesRows(t *testing.T) {
	a, _ := New(
		mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
		mat.NewDense(2, 1, []float64{1, 2}),
		nil,
	)
	b, _ := New(
		mat.NewDense(1, 2, []float64{5, 6}),
		mat.NewDense(1, 1, []float64{3}),
		nil,
	)
	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Len() != 3 {
		t.Fatalf("merged len = %d, want 3", merged.Len())
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	if diff := cmp.Diff(want, merged.Genes.RawMatrix().Data); diff != "" {
		t.Fatalf("merged genes mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeRejectsMismatchedOptionals(t *testing.T) {
	withC, _ := New(
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{-1}),
	)
	withoutC, _ := New(
		mat.NewDense(1, 1, []float64{2}),
		mat.NewDense(1, 1, []float64{2}),
		nil,
	)
	if _, err := Merge(withC, withoutC); err == nil {
		t.Fatalf("expected merge error for mismatched constraints")
	}

	ranked := withoutC
	ranked.SetRank([]int{0})
	unranked, _ := New(
		mat.NewDense(1, 1, []float64{3}),
		mat.NewDense(1, 1, []float64{3}),
		nil,
	)
	if _, err := Merge(ranked, unranked); err == nil {
		t.Fatalf("expected merge error for mismatched rank")
	}
}

func TestIndividualStringElidesLongVectors(t *testing.T) {
	genes := make([]float64, 8)
	for i := range genes {
		genes[i] = float64(i)
	}
	rank := 1
	ind := Individual{Genes: genes, Fitness: []float64{5}, Rank: &rank}
	got := ind.String()
	if !strings.Contains(got, "genes=[0 1 2 ... 5 6 7]") {
		t.Fatalf("long gene vector not elided: %s", got)
	}
	if !strings.Contains(got, "fitness=[5]") {
		t.Fatalf("short fitness vector must print in full: %s", got)
	}
	if !strings.Contains(got, "rank=1") {
		t.Fatalf("rank missing: %s", got)
	}
	if strings.Contains(got, "constraints") {
		t.Fatalf("absent constraints must not print: %s", got)
	}
}

func TestPopulationStringElidesRowsAndVectors(t *testing.T) {
	n, v := 10, 9
	genes := mat.NewDense(n, v, nil)
	fitness := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < v; j++ {
			genes.Set(i, j, float64(10*i+j))
		}
	}
	pop, err := New(genes, fitness, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := pop.String()
	if strings.Count(got, "\n") != 8 {
		t.Fatalf("want 3 head rows, an ellipsis row and 3 tail rows:\n%s", got)
	}
	if !strings.Contains(got, "[0 1 2 ... 6 7 8]") {
		t.Fatalf("long gene vectors not elided:\n%s", got)
	}
	if !strings.Contains(got, "[90 91 92 ... 96 97 98]") {
		t.Fatalf("tail rows must still render:\n%s", got)
	}
}

func TestSelectedCarriesEverything(t *testing.T) {
	pop, _ := New(
		mat.NewDense(3, 1, []float64{10, 20, 30}),
		mat.NewDense(3, 1, []float64{1, 2, 3}),
		mat.NewDense(3, 1, []float64{-1, 1, -1}),
	)
	pop.SetRank([]int{0, 1, 0})
	sub := pop.Selected([]int{2, 0})
	if sub.Len() != 2 {
		t.Fatalf("selected len = %d, want 2", sub.Len())
	}
	if sub.Genes.At(0, 0) != 30 || sub.Genes.At(1, 0) != 10 {
		t.Fatalf("selected genes wrong: %v", sub.Genes.RawMatrix().Data)
	}
	if sub.Rank[0] != 0 || sub.Rank[1] != 0 {
		t.Fatalf("selected rank wrong: %v", sub.Rank)
	}
	if !sub.IsFeasible(0) || !sub.IsFeasible(1) {
		t.Fatalf("selected feasibility wrong")
	}
}
