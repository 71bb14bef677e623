package scape

import (
	"context"
	"fmt"
	"log/slog"

	"spikewalk/internal/agent"
	protoio "spikewalk/internal/io"
	"spikewalk/internal/logging"
	"spikewalk/internal/morphology"
)

const (
	DefaultEpisodeTicks  = 200
	DefaultFitnessOffset = 100.0
	DefaultRobotObject   = "robot"
)

// WalkerConfig shapes one walking episode.
type WalkerConfig struct {
	Ticks         int
	Object        string
	FitnessOffset float64
	ActuatorMin   float64
	ActuatorMax   float64
}

func DefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		Ticks:         DefaultEpisodeTicks,
		Object:        DefaultRobotObject,
		FitnessOffset: DefaultFitnessOffset,
		ActuatorMin:   agent.ActuatorMinLength,
		ActuatorMax:   agent.ActuatorMaxLength,
	}
}

func (c WalkerConfig) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("episode ticks must be > 0, got %d", c.Ticks)
	}
	if c.Object == "" {
		return fmt.Errorf("episode object name is required")
	}
	return agent.ValidateRange(c.ActuatorMin, c.ActuatorMax)
}

// WalkerScape scores a controller by how far it walks the robot in a fresh
// world: FitnessOffset - (initial mean x - final mean x).
type WalkerScape struct {
	Config    WalkerConfig
	Extractor morphology.FeatureExtractor
	NewWorld  func() (World, error)
	Logger    *slog.Logger
}

// NewWalkerScape wires a scape to the lite world with default settings.
func NewWalkerScape(world WalkerLiteConfig, logger *slog.Logger) *WalkerScape {
	return &WalkerScape{
		Config:    DefaultWalkerConfig(),
		Extractor: morphology.CornerDistances{},
		NewWorld: func() (World, error) {
			return NewWalkerLiteWorld(world)
		},
		Logger: logger,
	}
}

func (*WalkerScape) Name() string {
	return "walker"
}

func (s *WalkerScape) Evaluate(ctx context.Context, a Agent) (Fitness, Trace, error) {
	if err := s.Config.Validate(); err != nil {
		return 0, nil, err
	}
	if s.Extractor == nil || s.NewWorld == nil {
		return 0, nil, fmt.Errorf("walker scape requires an extractor and a world factory")
	}

	decide, err := walkerDecider(a)
	if err != nil {
		return 0, nil, err
	}

	world, err := s.NewWorld()
	if err != nil {
		return 0, nil, fmt.Errorf("create world: %w", err)
	}
	if err := world.Reset(ctx); err != nil {
		return 0, nil, fmt.Errorf("reset world: %w", err)
	}
	if r, ok := a.(ResettableAgent); ok {
		r.Reset()
	}

	logger := logging.OrDiscard(s.Logger).With("scape", s.Name(), "agent", a.ID())

	initial, err := world.ObjectPositions(s.Config.Object)
	if err != nil {
		return 0, nil, err
	}
	initialX := initial.MeanX()

	var targets []float64
	for tick := 0; tick < s.Config.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		pos, err := world.ObjectPositions(s.Config.Object)
		if err != nil {
			return 0, nil, err
		}
		features, err := s.Extractor.Features(pos)
		if err != nil {
			return 0, nil, fmt.Errorf("tick %d: extract features: %w", tick, err)
		}
		out, err := decide(ctx, features)
		if err != nil {
			return 0, nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		targets = make([]float64, len(out))
		for i, v := range out {
			targets[i] = agent.Clamp(v, s.Config.ActuatorMin, s.Config.ActuatorMax)
		}
		if err := world.SetAction(s.Config.Object, targets); err != nil {
			return 0, nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		if err := world.Step(ctx); err != nil {
			return 0, nil, fmt.Errorf("tick %d: step world: %w", tick, err)
		}
		logger.Log(ctx, logging.LevelTrace, "tick",
			"tick", tick,
			"features", features,
			"targets", targets,
			"mean_x", pos.MeanX(),
		)
	}

	final, err := world.ObjectPositions(s.Config.Object)
	if err != nil {
		return 0, nil, err
	}
	finalX := final.MeanX()
	displacement := finalX - initialX
	fitness := s.Config.FitnessOffset - (initialX - finalX)

	trace := Trace{
		"initial_mean_x": initialX,
		"final_mean_x":   finalX,
		"displacement":   displacement,
		"ticks":          s.Config.Ticks,
		"last_targets":   targets,
	}
	if d, ok := a.(interface{ DutyCycles() []float64 }); ok {
		trace["duty_cycles"] = d.DutyCycles()
	}
	logger.Debug("episode finished", "fitness", fitness, "displacement", displacement)
	return Fitness(fitness), trace, nil
}

type decideFunc func(ctx context.Context, features []float64) ([]float64, error)

// walkerDecider prefers pushing features through the agent's registered
// sensor and reading the actuator snapshot; agents without registered IO
// are driven with RunStep.
func walkerDecider(a Agent) (decideFunc, error) {
	if ticker, ok := a.(TickAgent); ok {
		if setter, output, err := walkerIO(ticker); err == nil {
			return func(ctx context.Context, features []float64) ([]float64, error) {
				setter.Set(features)
				out, err := ticker.Tick(ctx)
				if err != nil {
					return nil, err
				}
				if last := output.Last(); len(last) > 0 {
					return last, nil
				}
				return out, nil
			}, nil
		}
	}
	runner, ok := a.(StepAgent)
	if !ok {
		return nil, fmt.Errorf("agent %s does not implement step runner", a.ID())
	}
	return func(ctx context.Context, features []float64) ([]float64, error) {
		return runner.RunStep(ctx, features)
	}, nil
}

func walkerIO(a TickAgent) (protoio.VectorSensorSetter, protoio.SnapshotActuator, error) {
	typed, ok := a.(interface {
		RegisteredSensor(id string) (protoio.Sensor, bool)
		RegisteredActuator(id string) (protoio.Actuator, bool)
	})
	if !ok {
		return nil, nil, fmt.Errorf("agent %s does not expose IO registry access", a.ID())
	}
	sensor, ok := typed.RegisteredSensor(protoio.CornerDistanceSensorName)
	if !ok {
		return nil, nil, fmt.Errorf("agent %s missing sensor %s", a.ID(), protoio.CornerDistanceSensorName)
	}
	setter, ok := sensor.(protoio.VectorSensorSetter)
	if !ok {
		return nil, nil, fmt.Errorf("sensor %s does not support vector set", protoio.CornerDistanceSensorName)
	}
	actuator, ok := typed.RegisteredActuator(protoio.MuscleLengthActuatorName)
	if !ok {
		return nil, nil, fmt.Errorf("agent %s missing actuator %s", a.ID(), protoio.MuscleLengthActuatorName)
	}
	output, ok := actuator.(protoio.SnapshotActuator)
	if !ok {
		return nil, nil, fmt.Errorf("actuator %s does not support output snapshot", protoio.MuscleLengthActuatorName)
	}
	return setter, output, nil
}
