package scape

import (
	"context"
	"fmt"

	"spikewalk/internal/agent"
	"spikewalk/internal/morphology"
)

// WalkerLiteConfig describes a row of voxels resting on flat ground.
type WalkerLiteConfig struct {
	Object      string  `json:"object" yaml:"object"`
	Voxels      int     `json:"voxels" yaml:"voxels"`
	VoxelHeight float64 `json:"voxel_height" yaml:"voxel_height"`
	SpawnX      float64 `json:"spawn_x" yaml:"spawn_x"`
	SpawnY      float64 `json:"spawn_y" yaml:"spawn_y"`
	// Grip is the share of a length change taken by the front edge while
	// expanding and by the rear edge while contracting. Above 0.5 the
	// robot creeps forward.
	Grip float64 `json:"grip" yaml:"grip"`
	// Response is the fraction of the gap to the target closed per step.
	Response float64 `json:"response" yaml:"response"`
}

func DefaultWalkerLiteConfig() WalkerLiteConfig {
	return WalkerLiteConfig{
		Object:      DefaultRobotObject,
		Voxels:      4,
		VoxelHeight: 1,
		SpawnX:      3,
		SpawnY:      1,
		Grip:        0.75,
		Response:    0.5,
	}
}

func (c WalkerLiteConfig) Validate() error {
	if c.Object == "" {
		return fmt.Errorf("world object name is required")
	}
	if c.Voxels <= 0 {
		return fmt.Errorf("voxels must be > 0, got %d", c.Voxels)
	}
	if c.VoxelHeight <= 0 {
		return fmt.Errorf("voxel height must be > 0, got %f", c.VoxelHeight)
	}
	if c.Grip < 0 || c.Grip > 1 {
		return fmt.Errorf("grip must be within [0,1], got %f", c.Grip)
	}
	if c.Response <= 0 || c.Response > 1 {
		return fmt.Errorf("response must be within (0,1], got %f", c.Response)
	}
	return nil
}

// WalkerLiteWorld is deterministic toy kinematics, not a physics engine.
// Each voxel's width relaxes toward its actuator target and an asymmetric
// ground grip turns width oscillation into forward travel.
type WalkerLiteWorld struct {
	cfg     WalkerLiteConfig
	rear    float64
	widths  []float64
	targets []float64
	steps   int
}

func NewWalkerLiteWorld(cfg WalkerLiteConfig) (*WalkerLiteWorld, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &WalkerLiteWorld{
		cfg:     cfg,
		widths:  make([]float64, cfg.Voxels),
		targets: make([]float64, cfg.Voxels),
	}
	w.reset()
	return w, nil
}

func (w *WalkerLiteWorld) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.reset()
	return nil
}

func (w *WalkerLiteWorld) reset() {
	w.rear = w.cfg.SpawnX
	for i := range w.widths {
		w.widths[i] = 1
		w.targets[i] = 1
	}
	w.steps = 0
}

func (w *WalkerLiteWorld) Steps() int {
	return w.steps
}

// SetAction stores one target length per voxel for the next Step.
func (w *WalkerLiteWorld) SetAction(name string, targets []float64) error {
	if name != w.cfg.Object {
		return fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	if len(targets) != len(w.targets) {
		return fmt.Errorf("action size mismatch for %s: got=%d want=%d", name, len(targets), len(w.targets))
	}
	for i, v := range targets {
		w.targets[i] = agent.Clamp(v, agent.ActuatorMinLength, agent.ActuatorMaxLength)
	}
	return nil
}

func (w *WalkerLiteWorld) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	delta := 0.0
	for i := range w.widths {
		change := w.cfg.Response * (w.targets[i] - w.widths[i])
		w.widths[i] += change
		delta += change
	}
	if delta > 0 {
		w.rear -= (1 - w.cfg.Grip) * delta
	} else {
		w.rear -= w.cfg.Grip * delta
	}
	w.steps++
	return nil
}

// ObjectPositions returns the bottom row of point masses followed by the
// top row, each ordered rear to front.
func (w *WalkerLiteWorld) ObjectPositions(name string) (morphology.Positions, error) {
	if name != w.cfg.Object {
		return morphology.Positions{}, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	cols := len(w.widths) + 1
	pos := morphology.Positions{
		X: make([]float64, 0, 2*cols),
		Y: make([]float64, 0, 2*cols),
	}
	for _, y := range []float64{w.cfg.SpawnY, w.cfg.SpawnY + w.cfg.VoxelHeight} {
		x := w.rear
		pos.X = append(pos.X, x)
		pos.Y = append(pos.Y, y)
		for _, width := range w.widths {
			x += width
			pos.X = append(pos.X, x)
			pos.Y = append(pos.Y, y)
		}
	}
	return pos, nil
}
