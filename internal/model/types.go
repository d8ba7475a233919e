package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Run is the archived description of one optimization run.
type Run struct {
	VersionedRecord
	ID                  string    `json:"id"`
	Seed                int64     `json:"seed"`
	NumVars             int       `json:"num_vars"`
	NumObjectives       int       `json:"num_objectives"`
	PopulationSize      int       `json:"population_size"`
	NumOffspring        int       `json:"num_offspring"`
	NumIterations       int       `json:"num_iterations"`
	CompletedIterations int       `json:"completed_iterations"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// PopulationRecord is the archived final population of a run, stored
// row-major.
type PopulationRecord struct {
	VersionedRecord
	RunID       string      `json:"run_id"`
	Genes       [][]float64 `json:"genes"`
	Fitness     [][]float64 `json:"fitness"`
	Constraints [][]float64 `json:"constraints,omitempty"`
	Rank        []int       `json:"rank,omitempty"`
}

// GenerationStats summarizes one generation for the run history.
type GenerationStats struct {
	Generation  int       `json:"generation"`
	MinFitness  []float64 `json:"min_fitness"`
	MeanFitness []float64 `json:"mean_fitness"`
}
