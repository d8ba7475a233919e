package storage

import (
	"context"

	"moea/internal/model"
)

// Store defines the persistence operations of the run archive.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	SavePopulation(ctx context.Context, record model.PopulationRecord) error
	GetPopulation(ctx context.Context, runID string) (model.PopulationRecord, bool, error)
	SaveHistory(ctx context.Context, runID string, history []model.GenerationStats) error
	GetHistory(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
}
