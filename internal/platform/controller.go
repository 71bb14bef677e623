package platform

import (
	"fmt"
	"log/slog"
	"math/rand"

	"spikewalk/internal/agent"
	protoio "spikewalk/internal/io"
	"spikewalk/internal/model"
	"spikewalk/internal/morphology"
	"spikewalk/internal/nn"
)

// GenomeLayout is the per-network layout a genome was produced for.
func GenomeLayout(genome model.Genome) nn.Layout {
	return nn.Layout{Input: genome.Input, Hidden: genome.Hidden, Output: genome.Output}
}

// BuildController assembles a walker controller for genome with IO
// resolved for scapeName. A genome without weights keeps the controller's
// random initialisation drawn from rng.
func BuildController(genome model.Genome, scapeName string, actuation agent.Actuation, rng *rand.Rand, logger *slog.Logger) (*agent.Controller, error) {
	morph := morphology.WalkerMorphology{Voxels: genome.Networks * genome.Output}
	if !morph.Compatible(scapeName) {
		return nil, fmt.Errorf("morphology %s is not compatible with scape %s", morph.Name(), scapeName)
	}
	sensors, actuators, err := buildIO(morph.Sensors(), morph.Actuators(), scapeName)
	if err != nil {
		return nil, err
	}

	c, err := agent.NewController(genome.ID, agent.Config{
		Layout:      GenomeLayout(genome),
		Networks:    genome.Networks,
		Actuation:   actuation,
		SensorIDs:   morph.Sensors(),
		ActuatorIDs: morph.Actuators(),
		Sensors:     sensors,
		Actuators:   actuators,
		Rand:        rng,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	if genome.Weights != nil {
		if err := c.SetWeights(genome.Weights); err != nil {
			return nil, fmt.Errorf("genome %s: %w", genome.ID, err)
		}
	}
	return c, nil
}

func buildIO(sensorIDs, actuatorIDs []string, scapeName string) (map[string]protoio.Sensor, map[string]protoio.Actuator, error) {
	sensors := make(map[string]protoio.Sensor, len(sensorIDs))
	for _, sensorID := range sensorIDs {
		sensor, err := protoio.ResolveSensor(sensorID, scapeName)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve sensor %s for scape %s: %w", sensorID, scapeName, err)
		}
		sensors[sensorID] = sensor
	}

	actuators := make(map[string]protoio.Actuator, len(actuatorIDs))
	for _, actuatorID := range actuatorIDs {
		actuator, err := protoio.ResolveActuator(actuatorID, scapeName)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve actuator %s for scape %s: %w", actuatorID, scapeName, err)
		}
		actuators[actuatorID] = actuator
	}

	return sensors, actuators, nil
}
