package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spikewalk/internal/agent"
	"spikewalk/internal/model"
	"spikewalk/internal/scape"
	"spikewalk/internal/storage"
)

type EvaluationConfig struct {
	RunID     string
	ScapeName string
	Workers   int
	Actuation agent.Actuation
	Genomes   []model.Genome
}

type EvaluationResult struct {
	RunID       string
	Evaluations []model.Evaluation
	Best        model.Evaluation
}

// EvaluateGenomes scores every genome in its own controller and world,
// running at most Workers episodes at once, then records genomes and
// evaluations in input order. The first failing genome cancels the batch
// and nothing is persisted.
func (p *Polis) EvaluateGenomes(ctx context.Context, cfg EvaluationConfig) (EvaluationResult, error) {
	if !p.Started() {
		return EvaluationResult{}, fmt.Errorf("polis is not initialized")
	}
	if len(cfg.Genomes) == 0 {
		return EvaluationResult{}, fmt.Errorf("at least one genome is required")
	}
	if cfg.ScapeName == "" {
		return EvaluationResult{}, fmt.Errorf("scape name is required")
	}
	s, ok := p.GetScape(cfg.ScapeName)
	if !ok {
		return EvaluationResult{}, fmt.Errorf("scape not registered: %s", cfg.ScapeName)
	}
	if err := p.checkGenomeIDs(ctx, cfg.Genomes); err != nil {
		return EvaluationResult{}, err
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(cfg.Genomes) {
		workers = len(cfg.Genomes)
	}

	logger := p.logger.With("run", cfg.RunID, "scape", cfg.ScapeName)
	logger.Info("evaluating genomes", "genomes", len(cfg.Genomes), "workers", workers)

	results := make([]model.Evaluation, len(cfg.Genomes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, genome := range cfg.Genomes {
		g.Go(func() error {
			evaluation, err := p.evaluateGenome(gctx, s, cfg, genome)
			if err != nil {
				return fmt.Errorf("genome %s: %w", genome.ID, err)
			}
			results[i] = evaluation
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("evaluation failed", "error", err)
		return EvaluationResult{}, err
	}

	out := EvaluationResult{RunID: cfg.RunID, Evaluations: results}
	for i, evaluation := range results {
		evaluation.CreatedAt = time.Now().UTC()
		results[i] = evaluation
		if err := p.store.SaveGenome(ctx, cfg.Genomes[i]); err != nil {
			return EvaluationResult{}, fmt.Errorf("save genome %s: %w", cfg.Genomes[i].ID, err)
		}
		if err := p.store.SaveEvaluation(ctx, evaluation); err != nil {
			return EvaluationResult{}, fmt.Errorf("save evaluation %s: %w", evaluation.ID, err)
		}
		if i == 0 || model.FitterThan(evaluation.Fitness, out.Best.Fitness) {
			out.Best = evaluation
		}
	}
	logger.Info("evaluation finished", "best_fitness", out.Best.Fitness, "best_genome", out.Best.GenomeID)
	return out, nil
}

// checkGenomeIDs rejects a batch that would rebind a genome id to other
// weights, either within the batch or against the store.
func (p *Polis) checkGenomeIDs(ctx context.Context, genomes []model.Genome) error {
	seen := make(map[string]model.Genome, len(genomes))
	for _, genome := range genomes {
		if prev, ok := seen[genome.ID]; ok && !storage.SameGenome(prev, genome) {
			return fmt.Errorf("genome %s: %w", genome.ID, storage.ErrGenomeConflict)
		}
		seen[genome.ID] = genome

		stored, ok, err := p.store.GetGenome(ctx, genome.ID)
		if err != nil {
			return fmt.Errorf("load genome %s: %w", genome.ID, err)
		}
		if ok && !storage.SameGenome(stored, genome) {
			return fmt.Errorf("genome %s: %w", genome.ID, storage.ErrGenomeConflict)
		}
	}
	return nil
}

func (p *Polis) evaluateGenome(ctx context.Context, s scape.Scape, cfg EvaluationConfig, genome model.Genome) (model.Evaluation, error) {
	if len(genome.Weights) == 0 {
		return model.Evaluation{}, fmt.Errorf("genome has no weights")
	}
	controller, err := BuildController(genome, s.Name(), cfg.Actuation, nil, p.logger)
	if err != nil {
		return model.Evaluation{}, err
	}
	fitness, trace, err := s.Evaluate(ctx, controller)
	if err != nil {
		return model.Evaluation{}, err
	}

	evaluation := model.Evaluation{
		VersionedRecord: storage.CurrentVersion(),
		ID:              uuid.NewString(),
		RunID:           cfg.RunID,
		GenomeID:        genome.ID,
		Scape:           s.Name(),
		Fitness:         float64(fitness),
		Trace:           trace,
	}
	if v, ok := trace["displacement"].(float64); ok {
		evaluation.Displacement = v
	}
	if v, ok := trace["ticks"].(int); ok {
		evaluation.Ticks = v
	}
	return evaluation, nil
}
