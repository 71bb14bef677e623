package io

import (
	"context"
	"fmt"
	"sync"
)

const (
	CornerDistanceSensorName = "corner_distances"
	MuscleLengthActuatorName = "muscle_lengths"
)

// FeatureSensor hands the last feature vector it was given to the
// controller.
type FeatureSensor struct {
	mu     sync.RWMutex
	name   string
	values []float64
}

func NewFeatureSensor(name string) *FeatureSensor {
	return &FeatureSensor{name: name}
}

func (s *FeatureSensor) Name() string {
	return s.name
}

func (s *FeatureSensor) Read(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.values...), nil
}

func (s *FeatureSensor) Set(values []float64) {
	s.mu.Lock()
	s.values = append(s.values[:0], values...)
	s.mu.Unlock()
}

func (s *FeatureSensor) Reset() {
	s.mu.Lock()
	s.values = s.values[:0]
	s.mu.Unlock()
}

// LengthActuator records actuator target lengths for the scape to apply.
type LengthActuator struct {
	mu   sync.RWMutex
	name string
	last []float64
}

func NewLengthActuator(name string) *LengthActuator {
	return &LengthActuator{name: name}
}

func (a *LengthActuator) Name() string {
	return a.name
}

func (a *LengthActuator) Write(_ context.Context, values []float64) error {
	a.mu.Lock()
	a.last = append([]float64(nil), values...)
	a.mu.Unlock()
	return nil
}

func (a *LengthActuator) Last() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.last...)
}

func (a *LengthActuator) Reset() {
	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()
}

func init() {
	initializeDefaultComponents()
}

func initializeDefaultComponents() {
	walkerOnly := func(scape string) error {
		if scape != "walker" {
			return fmt.Errorf("unsupported scape: %s", scape)
		}
		return nil
	}
	if err := RegisterSensorWithSpec(SensorSpec{
		Name:       CornerDistanceSensorName,
		Factory:    func() Sensor { return NewFeatureSensor(CornerDistanceSensorName) },
		Compatible: walkerOnly,
	}); err != nil {
		panic(err)
	}
	if err := RegisterActuatorWithSpec(ActuatorSpec{
		Name:       MuscleLengthActuatorName,
		Factory:    func() Actuator { return NewLengthActuator(MuscleLengthActuatorName) },
		Compatible: walkerOnly,
	}); err != nil {
		panic(err)
	}
}
