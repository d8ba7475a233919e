package storage

import (
	"context"
	"errors"
	"sync"

	"moea/internal/model"
)

var errStoreNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	populations map[string]model.PopulationRecord
	history     map[string][]model.GenerationStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.populations = make(map[string]model.PopulationRecord)
	s.history = make(map[string][]model.GenerationStats)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errStoreNotInitialized
	}
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Run{}, false, errStoreNotInitialized
	}
	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, record model.PopulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errStoreNotInitialized
	}
	s.populations[record.RunID] = copyPopulationRecord(record)
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID string) (model.PopulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.PopulationRecord{}, false, errStoreNotInitialized
	}
	record, ok := s.populations[runID]
	if !ok {
		return model.PopulationRecord{}, false, nil
	}
	return copyPopulationRecord(record), true, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history []model.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errStoreNotInitialized
	}
	s.history[runID] = copyHistory(history)
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) ([]model.GenerationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, errStoreNotInitialized
	}
	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return copyHistory(history), true, nil
}

func copyPopulationRecord(record model.PopulationRecord) model.PopulationRecord {
	out := record
	out.Genes = copyRows(record.Genes)
	out.Fitness = copyRows(record.Fitness)
	out.Constraints = copyRows(record.Constraints)
	out.Rank = append([]int(nil), record.Rank...)
	return out
}

func copyHistory(history []model.GenerationStats) []model.GenerationStats {
	copied := make([]model.GenerationStats, 0, len(history))
	for _, stats := range history {
		copied = append(copied, model.GenerationStats{
			Generation:  stats.Generation,
			MinFitness:  append([]float64(nil), stats.MinFitness...),
			MeanFitness: append([]float64(nil), stats.MeanFitness...),
		})
	}
	return copied
}

func copyRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	copied := make([][]float64, len(rows))
	for i, row := range rows {
		copied[i] = append([]float64(nil), row...)
	}
	return copied
}
