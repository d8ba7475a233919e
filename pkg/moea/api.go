// Package moea is the public entry point: it wires the optimization engine
// to the run archive, fills in sensible defaults, and exposes run results
// for later retrieval.
package moea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"moea/internal/constraints"
	"moea/internal/duplicates"
	"moea/internal/engine"
	"moea/internal/genetic"
	"moea/internal/model"
	"moea/internal/operators"
	"moea/internal/selection"
	"moea/internal/storage"
	"moea/internal/survival"
)

const defaultDBPath = "moea.db"

// Options configure the client. StoreKind is "memory" (default) or
// "sqlite"; DBPath applies to the sqlite backend only.
type Options struct {
	StoreKind string
	DBPath    string
}

// Client runs optimizations and archives their results.
type Client struct {
	store storage.Store
}

// RunRequest describes one optimization. Fitness and NumVars are required.
// Operators left nil fall back to real-valued defaults built from the
// bounds; everything else defaults to the values documented on each field.
type RunRequest struct {
	Fitness     engine.FitnessFunc
	Constraints *constraints.Set

	Sampler   operators.Sampler   // default: uniform within the bounds
	Crossover operators.Crossover // default: simulated binary, eta 15
	Mutation  operators.Mutation  // default: gaussian, sigma 0.1
	Selector  selection.Selector
	Survivor  survival.Operator
	Cleaner   duplicates.Cleaner

	NumVars        int
	PopulationSize int     // default 50
	NumOffspring   int     // default PopulationSize
	NumIterations  int     // default 100
	CrossoverRate  *float64 // default 0.9; an explicit zero disables crossover
	MutationRate   *float64 // default 0.1; an explicit zero disables mutation
	KeepInfeasible bool

	LowerBound *float64
	UpperBound *float64

	Seed       int64
	Verbose    bool
	Terminator engine.Terminator
}

// RunSummary reports a finished run. Best holds the first-front genes and
// fitness row by row.
type RunSummary struct {
	RunID       string
	Iterations  int
	BestGenes   [][]float64
	BestFitness [][]float64
	History     []model.GenerationStats
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Run executes the request and archives the run record, the final
// population, and the per-generation history under a fresh run ID.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := applyRunDefaults(&req); err != nil {
		return RunSummary{}, err
	}

	var history []model.GenerationStats
	cfg := engine.Config{
		Fitness:        req.Fitness,
		Constraints:    req.Constraints,
		Sampler:        req.Sampler,
		Crossover:      req.Crossover,
		Mutation:       req.Mutation,
		Selector:       req.Selector,
		Survivor:       req.Survivor,
		Cleaner:        req.Cleaner,
		NumVars:        req.NumVars,
		PopulationSize: req.PopulationSize,
		NumOffspring:   req.NumOffspring,
		NumIterations:  req.NumIterations,
		CrossoverRate:  *req.CrossoverRate,
		MutationRate:   *req.MutationRate,
		KeepInfeasible: req.KeepInfeasible,
		LowerBound:     req.LowerBound,
		UpperBound:     req.UpperBound,
		Seed:           req.Seed,
		Verbose:        req.Verbose,
		Terminator:     req.Terminator,
		Observer: func(iteration int, pop genetic.Population) {
			history = append(history, generationStats(iteration, pop))
		},
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return RunSummary{}, err
	}

	startedAt := time.Now().UTC()
	if err := eng.Run(ctx); err != nil {
		return RunSummary{}, err
	}
	finishedAt := time.Now().UTC()

	pop, err := eng.Population()
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	run := model.Run{
		VersionedRecord:     currentVersion(),
		ID:                  runID,
		Seed:                req.Seed,
		NumVars:             req.NumVars,
		NumObjectives:       pop.NumObjectives(),
		PopulationSize:      req.PopulationSize,
		NumOffspring:        req.NumOffspring,
		NumIterations:       req.NumIterations,
		CompletedIterations: eng.Iterations(),
		StartedAt:           startedAt,
		FinishedAt:          finishedAt,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, fmt.Errorf("archive run: %w", err)
	}
	if err := c.store.SavePopulation(ctx, populationRecord(runID, pop)); err != nil {
		return RunSummary{}, fmt.Errorf("archive population: %w", err)
	}
	if err := c.store.SaveHistory(ctx, runID, history); err != nil {
		return RunSummary{}, fmt.Errorf("archive history: %w", err)
	}

	best := pop.Best()
	return RunSummary{
		RunID:       runID,
		Iterations:  eng.Iterations(),
		BestGenes:   matrixRows(best.Genes),
		BestFitness: matrixRows(best.Fitness),
		History:     history,
	}, nil
}

// RunInfo retrieves an archived run record.
func (c *Client) RunInfo(ctx context.Context, runID string) (model.Run, error) {
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.Run{}, err
	}
	if !ok {
		return model.Run{}, fmt.Errorf("run %s not found", runID)
	}
	return run, nil
}

// FinalPopulation retrieves the archived final population of a run.
func (c *Client) FinalPopulation(ctx context.Context, runID string) (model.PopulationRecord, error) {
	record, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return model.PopulationRecord{}, err
	}
	if !ok {
		return model.PopulationRecord{}, fmt.Errorf("population for run %s not found", runID)
	}
	return record, nil
}

// History retrieves the archived per-generation statistics of a run.
func (c *Client) History(ctx context.Context, runID string) ([]model.GenerationStats, error) {
	history, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("history for run %s not found", runID)
	}
	return history, nil
}

func applyRunDefaults(req *RunRequest) error {
	if req.PopulationSize <= 0 {
		req.PopulationSize = 50
	}
	if req.NumOffspring <= 0 {
		req.NumOffspring = req.PopulationSize
	}
	if req.NumIterations <= 0 {
		req.NumIterations = 100
	}
	if req.CrossoverRate == nil {
		req.CrossoverRate = constraints.Float(0.9)
	}
	if req.MutationRate == nil {
		req.MutationRate = constraints.Float(0.1)
	}
	if req.Sampler == nil {
		if req.LowerBound == nil || req.UpperBound == nil {
			return errors.New("a sampler or both bounds are required")
		}
		req.Sampler = operators.RandomFloat{Min: *req.LowerBound, Max: *req.UpperBound}
	}
	if req.Crossover == nil {
		req.Crossover = operators.SimulatedBinary{Eta: 15}
	}
	if req.Mutation == nil {
		req.Mutation = operators.Gaussian{GeneRate: 0.5, Sigma: 0.1}
	}
	return nil
}

func generationStats(iteration int, pop genetic.Population) model.GenerationStats {
	numObj := pop.NumObjectives()
	stats := model.GenerationStats{
		Generation:  iteration,
		MinFitness:  make([]float64, numObj),
		MeanFitness: make([]float64, numObj),
	}
	col := make([]float64, pop.Len())
	for obj := 0; obj < numObj; obj++ {
		mat.Col(col, obj, pop.Fitness)
		stats.MinFitness[obj] = floats.Min(col)
		stats.MeanFitness[obj] = stat.Mean(col, nil)
	}
	return stats
}

func populationRecord(runID string, pop genetic.Population) model.PopulationRecord {
	record := model.PopulationRecord{
		VersionedRecord: currentVersion(),
		RunID:           runID,
		Genes:           matrixRows(pop.Genes),
		Fitness:         matrixRows(pop.Fitness),
		Rank:            append([]int(nil), pop.Rank...),
	}
	if pop.Constraints != nil {
		record.Constraints = matrixRows(pop.Constraints)
	}
	return record
}

func currentVersion() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}

func matrixRows(m *mat.Dense) [][]float64 {
	n, c := m.Dims()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}
