package spikewalk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"spikewalk/internal/agent"
	"spikewalk/internal/config"
	protoio "spikewalk/internal/io"
	"spikewalk/internal/logging"
	"spikewalk/internal/model"
	"spikewalk/internal/nn"
	"spikewalk/internal/platform"
	"spikewalk/internal/scape"
	"spikewalk/internal/stats"
	"spikewalk/internal/storage"
)

const defaultProbeSteps = 100

type Options struct {
	// Config defaults to config.Default() when nil.
	Config *config.Config
	// StoreKind and DBPath override Config.Storage when set.
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	cfg    config.Config
	store  storage.Store
	logger *slog.Logger

	mu    sync.Mutex
	polis *platform.Polis
}

type EvaluateRequest struct {
	RunID    string
	GenomeID string
	// Weights is the flat genome. When empty, Random must be set and the
	// controller's random initialisation from Seed is evaluated instead.
	Weights []float64
	Random  bool
	Seed    int64
}

type EvaluateSummary struct {
	RunID        string
	EvaluationID string
	GenomeID     string
	Fitness      float64
	Displacement float64
	Ticks        int
	DutyCycles   []float64
}

type BatchRequest struct {
	RunID   string
	Genomes [][]float64
	// Random adds this many randomly initialised genomes seeded from Seed.
	Random  int
	Seed    int64
	Workers int
}

type BatchSummary struct {
	RunID   string
	Results []EvaluateSummary
	Best    EvaluateSummary
	Stats   stats.FitnessStats
}

type ProbeRequest struct {
	Weights []float64
	Random  bool
	Seed    int64
	Steps   int
}

type ProbeSummary struct {
	Steps int
	// DutyCycles holds one entry per network output, in genome order.
	DutyCycles []float64
	// Actions are the duty cycles mapped to actuator target lengths.
	Actions []float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID       string
	Evaluations int
	BestFitness float64
	BestGenome  string
	UpdatedAt   time.Time
}

type EvaluationItem struct {
	ID           string
	GenomeID     string
	Fitness      float64
	Displacement float64
	Ticks        int
	CreatedAt    time.Time
}

type NetworkStructure struct {
	Index         int
	HiddenWeights [][]float64
	OutputWeights [][]float64
}

type ShowSummary struct {
	Evaluation model.Evaluation
	Genome     model.Genome
	Networks   []NetworkStructure
}

type LayoutSummary struct {
	Layout       nn.Layout
	Networks     int
	GenomeLength int
	Actuators    int
	Actuation    agent.Actuation
	// Scapes are the registered scapes genomes can be evaluated in.
	Scapes []string
	// SensorComponents and ActuatorComponents list the registered IO
	// component names.
	SensorComponents   []string
	ActuatorComponents []string
}

func New(opts Options) (*Client, error) {
	cfg := config.Default()
	if opts.Config != nil {
		copied := *opts.Config
		cfg = &copied
	}
	if opts.StoreKind != "" {
		cfg.Storage.Kind = opts.StoreKind
	}
	if opts.DBPath != "" {
		cfg.Storage.Path = opts.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := storage.NewStore(cfg.Storage.Kind, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:    *cfg,
		store:  store,
		logger: logging.OrDiscard(opts.Logger),
	}, nil
}

// Close stops the platform, if it was started, and closes the store.
func (c *Client) Close() error {
	c.mu.Lock()
	p := c.polis
	c.polis = nil
	c.mu.Unlock()
	if p != nil {
		if err := p.StopWithReason(platform.StopReasonShutdown); err != nil {
			return err
		}
	}
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

// GenomeLength is the exact flat weight count every genome must carry.
func (c *Client) GenomeLength() int {
	return c.cfg.Network.GenomeLength()
}

func (c *Client) Layout(ctx context.Context) (LayoutSummary, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return LayoutSummary{}, err
	}
	return LayoutSummary{
		Layout:             c.cfg.Network.Layout(),
		Networks:           c.cfg.Network.Networks,
		GenomeLength:       c.GenomeLength(),
		Actuators:          c.cfg.Robot.Voxels,
		Actuation:          c.cfg.Episode.Actuation,
		Scapes:             p.RegisteredScapes(),
		SensorComponents:   protoio.ListSensors(),
		ActuatorComponents: protoio.ListActuators(),
	}, nil
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	genome, err := c.requestGenome(req.GenomeID, req.Weights, req.Random, req.Seed)
	if err != nil {
		return EvaluateSummary{}, err
	}
	batch, err := c.evaluate(ctx, req.RunID, []model.Genome{genome}, 1)
	if err != nil {
		return EvaluateSummary{}, err
	}
	return batch.Results[0], nil
}

func (c *Client) EvaluateBatch(ctx context.Context, req BatchRequest) (BatchSummary, error) {
	if req.Random < 0 {
		return BatchSummary{}, errors.New("random genome count must be >= 0")
	}
	genomes := make([]model.Genome, 0, len(req.Genomes)+req.Random)
	for _, weights := range req.Genomes {
		genome, err := c.requestGenome("", weights, false, 0)
		if err != nil {
			return BatchSummary{}, fmt.Errorf("genome %d: %w", len(genomes), err)
		}
		genomes = append(genomes, genome)
	}
	for i := 0; i < req.Random; i++ {
		genome, err := c.requestGenome("", nil, true, req.Seed+int64(i))
		if err != nil {
			return BatchSummary{}, err
		}
		genomes = append(genomes, genome)
	}
	if len(genomes) == 0 {
		return BatchSummary{}, errors.New("batch requires at least one genome")
	}

	workers := req.Workers
	if workers <= 0 {
		workers = c.cfg.Evaluation.Workers
	}
	return c.evaluate(ctx, req.RunID, genomes, workers)
}

// Probe drives each network of a controller with uniform random inputs and
// reports the resulting duty cycles and actuator targets. Nothing is stored.
func (c *Client) Probe(_ context.Context, req ProbeRequest) (ProbeSummary, error) {
	if req.Steps <= 0 {
		req.Steps = defaultProbeSteps
	}
	genome, err := c.requestGenome("probe", req.Weights, req.Random, req.Seed)
	if err != nil {
		return ProbeSummary{}, err
	}
	controller, err := platform.BuildController(genome, "walker", c.cfg.Episode.Actuation, nil, c.logger)
	if err != nil {
		return ProbeSummary{}, err
	}

	rng := rand.New(rand.NewSource(req.Seed))
	out := ProbeSummary{Steps: req.Steps}
	for i, net := range controller.Networks() {
		duty, err := net.Probe(req.Steps, rng)
		if err != nil {
			return ProbeSummary{}, fmt.Errorf("network %d: %w", i, err)
		}
		out.DutyCycles = append(out.DutyCycles, duty...)
	}
	out.Actions = c.cfg.Episode.Actuation.Targets(out.DutyCycles)
	return out, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:       run.RunID,
			Evaluations: run.Evaluations,
			BestFitness: run.BestFitness,
			BestGenome:  run.BestGenome,
			UpdatedAt:   run.UpdatedAt,
		})
	}
	return out, nil
}

func (c *Client) Evaluations(ctx context.Context, runID string) ([]EvaluationItem, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}
	evaluations, err := c.store.ListEvaluations(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(evaluations) == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	out := make([]EvaluationItem, 0, len(evaluations))
	for _, e := range evaluations {
		out = append(out, EvaluationItem{
			ID:           e.ID,
			GenomeID:     e.GenomeID,
			Fitness:      e.Fitness,
			Displacement: e.Displacement,
			Ticks:        e.Ticks,
			CreatedAt:    e.CreatedAt,
		})
	}
	return out, nil
}

// Show loads one evaluation with its genome split into per-network,
// per-neuron weight rows.
func (c *Client) Show(ctx context.Context, evaluationID string) (ShowSummary, error) {
	if evaluationID == "" {
		return ShowSummary{}, errors.New("evaluation id is required")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return ShowSummary{}, err
	}
	evaluation, ok, err := c.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return ShowSummary{}, err
	}
	if !ok {
		return ShowSummary{}, fmt.Errorf("evaluation not found: %s", evaluationID)
	}
	genome, ok, err := c.store.GetGenome(ctx, evaluation.GenomeID)
	if err != nil {
		return ShowSummary{}, err
	}
	if !ok {
		return ShowSummary{}, fmt.Errorf("genome not found: %s", evaluation.GenomeID)
	}
	networks, err := Structure(genome)
	if err != nil {
		return ShowSummary{}, err
	}
	return ShowSummary{Evaluation: evaluation, Genome: genome, Networks: networks}, nil
}

// Structure splits a genome into networks, layers and neuron weight rows.
// The last entry of every row is the neuron's bias.
func Structure(genome model.Genome) ([]NetworkStructure, error) {
	layout := platform.GenomeLayout(genome)
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if genome.Networks <= 0 || len(genome.Weights) != genome.Networks*layout.Len() {
		return nil, fmt.Errorf("%w: genome %s has %d weights for %d networks of %s",
			nn.ErrConfiguration, genome.ID, len(genome.Weights), genome.Networks, layout)
	}
	out := make([]NetworkStructure, 0, genome.Networks)
	for i, chunk := range nn.Group(genome.Weights, layout.Len()) {
		hidden, output, err := layout.Split(chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, NetworkStructure{
			Index:         i,
			HiddenWeights: nn.Group(hidden, layout.Input+1),
			OutputWeights: nn.Group(output, layout.Hidden+1),
		})
	}
	return out, nil
}

func (c *Client) evaluate(ctx context.Context, runID string, genomes []model.Genome, workers int) (BatchSummary, error) {
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return BatchSummary{}, err
	}
	result, err := p.EvaluateGenomes(ctx, platform.EvaluationConfig{
		RunID:     runID,
		ScapeName: "walker",
		Workers:   workers,
		Actuation: c.cfg.Episode.Actuation,
		Genomes:   genomes,
	})
	if err != nil {
		return BatchSummary{}, err
	}

	out := BatchSummary{RunID: result.RunID, Results: make([]EvaluateSummary, 0, len(result.Evaluations))}
	fitness := make([]float64, 0, len(result.Evaluations))
	for _, e := range result.Evaluations {
		fitness = append(fitness, e.Fitness)
		summary := EvaluateSummary{
			RunID:        e.RunID,
			EvaluationID: e.ID,
			GenomeID:     e.GenomeID,
			Fitness:      e.Fitness,
			Displacement: e.Displacement,
			Ticks:        e.Ticks,
		}
		if duty, ok := e.Trace["duty_cycles"].([]float64); ok {
			summary.DutyCycles = duty
		}
		out.Results = append(out.Results, summary)
		if e.ID == result.Best.ID {
			out.Best = summary
		}
	}
	out.Stats = stats.Summarize(fitness, c.cfg.Episode.FitnessOffset)
	return out, nil
}

// requestGenome validates explicit weights or draws a random genome from
// seed using the controller's own initialisation.
func (c *Client) requestGenome(id string, weights []float64, random bool, seed int64) (model.Genome, error) {
	if id == "" {
		id = uuid.NewString()
	}
	genome := model.Genome{
		VersionedRecord: storage.CurrentVersion(),
		ID:              id,
		Input:           c.cfg.Network.Input,
		Hidden:          c.cfg.Network.Hidden,
		Output:          c.cfg.Network.Output,
		Networks:        c.cfg.Network.Networks,
	}
	switch {
	case len(weights) > 0 && random:
		return model.Genome{}, errors.New("use either weights or random")
	case len(weights) > 0:
		if len(weights) != c.GenomeLength() {
			return model.Genome{}, fmt.Errorf("%w: genome expects %d weights, got %d", nn.ErrConfiguration, c.GenomeLength(), len(weights))
		}
		genome.Weights = append([]float64(nil), weights...)
	case random:
		controller, err := platform.BuildController(genome, "walker", c.cfg.Episode.Actuation, rand.New(rand.NewSource(seed)), nil)
		if err != nil {
			return model.Genome{}, err
		}
		genome.Weights = controller.Weights()
	default:
		return model.Genome{}, errors.New("genome requires weights or random")
	}
	return genome, nil
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{
		Store:  c.store,
		Scapes: []scape.Scape{c.walkerScape()},
		Logger: c.logger,
	})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}

func (c *Client) walkerScape() *scape.WalkerScape {
	s := scape.NewWalkerScape(c.cfg.Robot, c.logger)
	s.Config.Ticks = c.cfg.Episode.Ticks
	s.Config.FitnessOffset = c.cfg.Episode.FitnessOffset
	s.Config.Object = c.cfg.Robot.Object
	s.Config.ActuatorMin = c.cfg.Episode.Actuation.Min
	s.Config.ActuatorMax = c.cfg.Episode.Actuation.Max
	return s
}
