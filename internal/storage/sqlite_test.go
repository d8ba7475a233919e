//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"moea/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return store
}

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	run := model.Run{VersionedRecord: versioned(), ID: "run-1", Seed: 42, NumVars: 3}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("run mismatch (-want +got):\n%s", diff)
	}

	// Saving again overwrites.
	run.CompletedIterations = 10
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run again: %v", err)
	}
	got, _, _ = store.GetRun(ctx, "run-1")
	if got.CompletedIterations != 10 {
		t.Fatalf("overwrite failed: %+v", got)
	}
}

func TestSQLiteStorePopulationAndHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	record := model.PopulationRecord{
		VersionedRecord: versioned(),
		RunID:           "run-1",
		Genes:           [][]float64{{1, 2}, {3, 4}},
		Fitness:         [][]float64{{3}, {7}},
		Rank:            []int{0, 1},
	}
	if err := store.SavePopulation(ctx, record); err != nil {
		t.Fatalf("save population: %v", err)
	}
	gotPop, ok, err := store.GetPopulation(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get population: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(record, gotPop); diff != "" {
		t.Fatalf("population mismatch (-want +got):\n%s", diff)
	}

	history := []model.GenerationStats{{Generation: 0, MinFitness: []float64{3}, MeanFitness: []float64{5}}}
	if err := store.SaveHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	gotHist, ok, err := store.GetHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get history: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(history, gotHist); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreMissingRows(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing run: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetPopulation(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing population: ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetHistory(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing history: ok=%v err=%v", ok, err)
	}
}
