package scape

import (
	"context"
	"errors"

	"spikewalk/internal/morphology"
)

var ErrUnknownObject = errors.New("unknown world object")

type Fitness float64

type Trace map[string]any

type Agent interface {
	ID() string
}

type TickAgent interface {
	Agent
	Tick(ctx context.Context) ([]float64, error)
}

type StepAgent interface {
	Agent
	RunStep(ctx context.Context, input []float64) ([]float64, error)
}

// ResettableAgent is reset to its resting state before every episode.
type ResettableAgent interface {
	Reset()
}

type Scape interface {
	Name() string
	Evaluate(ctx context.Context, agent Agent) (Fitness, Trace, error)
}

// World is the simulation a scape drives. Objects are addressed by name;
// actions are per-actuator target lengths.
type World interface {
	Reset(ctx context.Context) error
	Step(ctx context.Context) error
	ObjectPositions(name string) (morphology.Positions, error)
	SetAction(name string, targets []float64) error
}
