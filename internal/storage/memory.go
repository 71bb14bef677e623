package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"spikewalk/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]model.Genome
	evaluations map[string]model.Evaluation
	runs        map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.Genome)
	s.evaluations = make(map[string]model.Evaluation)
	s.runs = make(map[string][]string)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if existing, ok := s.genomes[genome.ID]; ok {
		if !SameGenome(existing, genome) {
			return fmt.Errorf("%w: %s", ErrGenomeConflict, genome.ID)
		}
		return nil
	}
	genome.Weights = append([]float64(nil), genome.Weights...)
	s.genomes[genome.ID] = genome
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[id]
	if !ok {
		return model.Genome{}, false, nil
	}
	genome.Weights = append([]float64(nil), genome.Weights...)
	return genome, true, nil
}

func (s *MemoryStore) SaveEvaluation(_ context.Context, evaluation model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	if _, exists := s.evaluations[evaluation.ID]; !exists {
		s.runs[evaluation.RunID] = append(s.runs[evaluation.RunID], evaluation.ID)
	}
	s.evaluations[evaluation.ID] = evaluation
	return nil
}

func (s *MemoryStore) GetEvaluation(_ context.Context, id string) (model.Evaluation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evaluation, ok := s.evaluations[id]
	return evaluation, ok, nil
}

func (s *MemoryStore) ListEvaluations(_ context.Context, runID string) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.runs[runID]
	out := make([]model.Evaluation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.evaluations[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunSummary, 0, len(s.runs))
	for runID, ids := range s.runs {
		summary := model.RunSummary{RunID: runID}
		for i, id := range ids {
			e := s.evaluations[id]
			summary.Evaluations++
			if i == 0 || model.FitterThan(e.Fitness, summary.BestFitness) {
				summary.BestFitness = e.Fitness
				summary.BestGenome = e.GenomeID
			}
			if e.CreatedAt.After(summary.UpdatedAt) {
				summary.UpdatedAt = e.CreatedAt
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].RunID < out[j].RunID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
