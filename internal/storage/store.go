package storage

import (
	"context"
	"errors"
	"slices"

	"spikewalk/internal/model"
)

// ErrGenomeConflict is returned when a genome id is already stored with a
// different layout or different weights. Stored genomes are immutable so
// older evaluations keep pointing at the weights they scored.
var ErrGenomeConflict = errors.New("genome id already stored with different weights")

// Store persists genomes and the evaluations scored for them.
type Store interface {
	Init(ctx context.Context) error
	// SaveGenome stores a new genome. Saving an identical genome again is a
	// no-op; a different genome under an existing id is ErrGenomeConflict.
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, id string) (model.Genome, bool, error)
	SaveEvaluation(ctx context.Context, evaluation model.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (model.Evaluation, bool, error)
	// ListEvaluations returns a run's evaluations oldest first.
	ListEvaluations(ctx context.Context, runID string) ([]model.Evaluation, error)
	// ListRuns returns run summaries, most recently updated first. A
	// non-positive limit returns every run.
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
}

// SameGenome reports whether a and b describe the same controller.
func SameGenome(a, b model.Genome) bool {
	return a.ID == b.ID &&
		a.Input == b.Input &&
		a.Hidden == b.Hidden &&
		a.Output == b.Output &&
		a.Networks == b.Networks &&
		slices.Equal(a.Weights, b.Weights)
}
