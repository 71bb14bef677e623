package io

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrSensorExists     = errors.New("sensor already registered")
	ErrSensorNotFound   = errors.New("sensor not found")
	ErrActuatorExists   = errors.New("actuator already registered")
	ErrActuatorNotFound = errors.New("actuator not found")
	ErrIncompatible     = errors.New("component incompatible with scape")
)

type CompatibilityFn func(scape string) error

type SensorFactory func() Sensor

type ActuatorFactory func() Actuator

type SensorSpec struct {
	Name       string
	Factory    SensorFactory
	Compatible CompatibilityFn
}

type ActuatorSpec struct {
	Name       string
	Factory    ActuatorFactory
	Compatible CompatibilityFn
}

var sensorRegistry = struct {
	mu sync.RWMutex
	m  map[string]SensorSpec
}{
	m: make(map[string]SensorSpec),
}

var actuatorRegistry = struct {
	mu sync.RWMutex
	m  map[string]ActuatorSpec
}{
	m: make(map[string]ActuatorSpec),
}

func RegisterSensorWithSpec(spec SensorSpec) error {
	if spec.Name == "" {
		return errors.New("sensor name is required")
	}
	if spec.Factory == nil {
		return errors.New("sensor factory is required")
	}

	sensorRegistry.mu.Lock()
	defer sensorRegistry.mu.Unlock()

	if _, exists := sensorRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrSensorExists, spec.Name)
	}
	sensorRegistry.m[spec.Name] = spec
	return nil
}

func ResolveSensor(name, scape string) (Sensor, error) {
	sensorRegistry.mu.RLock()
	spec, ok := sensorRegistry.m[name]
	sensorRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, name)
	}
	if spec.Compatible != nil {
		if err := spec.Compatible(normalizeScape(scape)); err != nil {
			return nil, fmt.Errorf("%w: sensor=%s: %v", ErrIncompatible, name, err)
		}
	}
	return spec.Factory(), nil
}

func ListSensors() []string {
	sensorRegistry.mu.RLock()
	defer sensorRegistry.mu.RUnlock()

	names := make([]string, 0, len(sensorRegistry.m))
	for n := range sensorRegistry.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func RegisterActuatorWithSpec(spec ActuatorSpec) error {
	if spec.Name == "" {
		return errors.New("actuator name is required")
	}
	if spec.Factory == nil {
		return errors.New("actuator factory is required")
	}

	actuatorRegistry.mu.Lock()
	defer actuatorRegistry.mu.Unlock()

	if _, exists := actuatorRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrActuatorExists, spec.Name)
	}
	actuatorRegistry.m[spec.Name] = spec
	return nil
}

func ResolveActuator(name, scape string) (Actuator, error) {
	actuatorRegistry.mu.RLock()
	spec, ok := actuatorRegistry.m[name]
	actuatorRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrActuatorNotFound, name)
	}
	if spec.Compatible != nil {
		if err := spec.Compatible(normalizeScape(scape)); err != nil {
			return nil, fmt.Errorf("%w: actuator=%s: %v", ErrIncompatible, name, err)
		}
	}
	return spec.Factory(), nil
}

func ListActuators() []string {
	actuatorRegistry.mu.RLock()
	defer actuatorRegistry.mu.RUnlock()

	names := make([]string, 0, len(actuatorRegistry.m))
	for n := range actuatorRegistry.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalizeScape(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(normalized, "_", "-")
}
