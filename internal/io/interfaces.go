package io

import "context"

// Sensor delivers one feature vector to a controller per tick.
type Sensor interface {
	Name() string
	Read(ctx context.Context) ([]float64, error)
}

// VectorSensorSetter is implemented by sensors the walker scape fills with
// freshly extracted corner distances before each tick.
type VectorSensorSetter interface {
	Set(values []float64)
}

// Actuator receives the target lengths computed for its voxels.
type Actuator interface {
	Name() string
	Write(ctx context.Context, values []float64) error
}

// SnapshotActuator exposes the latest targets so the scape can forward
// them to the world.
type SnapshotActuator interface {
	Last() []float64
}

// Resetter is implemented by components holding per-episode state.
type Resetter interface {
	Reset()
}
