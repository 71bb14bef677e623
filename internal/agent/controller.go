package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	protoio "spikewalk/internal/io"
	"spikewalk/internal/logging"
	"spikewalk/internal/nn"
)

// Config describes a spiking controller. Each of the Networks copies of
// Layout receives the same sensor features; their outputs are concatenated
// in network order to form the actuator vector.
type Config struct {
	Layout      nn.Layout
	Networks    int
	Actuation   Actuation
	SensorIDs   []string
	ActuatorIDs []string
	Sensors     map[string]protoio.Sensor
	Actuators   map[string]protoio.Actuator
	Rand        *rand.Rand
	Logger      *slog.Logger
}

// Controller drives actuators from sensor features through one or more
// spiking networks. It is owned by a single episode at a time.
type Controller struct {
	id          string
	layout      nn.Layout
	networks    []*nn.Network
	actuation   Actuation
	sensorIDs   []string
	actuatorIDs []string
	sensors     map[string]protoio.Sensor
	actuators   map[string]protoio.Actuator
	logger      *slog.Logger
}

func NewController(id string, cfg Config) (*Controller, error) {
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if cfg.Networks <= 0 {
		cfg.Networks = 1
	}
	if cfg.Actuation == (Actuation{}) {
		cfg.Actuation = DefaultActuation()
	}
	if err := cfg.Actuation.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		id:          id,
		layout:      cfg.Layout,
		networks:    make([]*nn.Network, cfg.Networks),
		actuation:   cfg.Actuation,
		sensorIDs:   append([]string(nil), cfg.SensorIDs...),
		actuatorIDs: append([]string(nil), cfg.ActuatorIDs...),
		sensors:     cfg.Sensors,
		actuators:   cfg.Actuators,
		logger:      logging.OrDiscard(cfg.Logger).With("agent", id),
	}
	for i := range c.networks {
		net, err := nn.NewNetwork(cfg.Layout, cfg.Rand)
		if err != nil {
			return nil, err
		}
		c.networks[i] = net
	}
	return c, nil
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Layout() nn.Layout {
	return c.layout
}

func (c *Controller) Networks() []*nn.Network {
	return append([]*nn.Network(nil), c.networks...)
}

// GenomeLength is the exact flat weight count SetWeights accepts.
func (c *Controller) GenomeLength() int {
	return len(c.networks) * c.layout.Len()
}

// OutputCount is the length of the actuator vector produced per tick.
func (c *Controller) OutputCount() int {
	return len(c.networks) * c.layout.Output
}

// SetWeights splits genome evenly across the controller's networks. The
// length is checked before any network is touched.
func (c *Controller) SetWeights(genome []float64) error {
	if len(genome) != c.GenomeLength() {
		err := fmt.Errorf("%w: controller expects %d weights, got %d", nn.ErrConfiguration, c.GenomeLength(), len(genome))
		c.logger.Error("weight vector rejected", "want", c.GenomeLength(), "got", len(genome))
		return err
	}
	for i, chunk := range nn.Group(genome, c.layout.Len()) {
		if err := c.networks[i].SetWeights(chunk); err != nil {
			return fmt.Errorf("network %d: %w", i, err)
		}
	}
	return nil
}

// SetWeight updates a single genome entry. Out of range indices are
// logged and ignored.
func (c *Controller) SetWeight(idx int, value float64) error {
	per := c.layout.Len()
	if idx < 0 || idx >= c.GenomeLength() {
		err := fmt.Errorf("%w: genome index %d, size %d", nn.ErrIndexOutOfRange, idx, c.GenomeLength())
		c.logger.Warn("weight index ignored", "index", idx, "size", c.GenomeLength())
		return err
	}
	return c.networks[idx/per].SetWeight(idx%per, value)
}

// Weights returns the full genome currently held by the controller.
func (c *Controller) Weights() []float64 {
	out := make([]float64, 0, c.GenomeLength())
	for _, net := range c.networks {
		out = append(out, net.Weights()...)
	}
	return out
}

func (c *Controller) RegisteredSensor(id string) (protoio.Sensor, bool) {
	if c.sensors == nil {
		return nil, false
	}
	s, ok := c.sensors[id]
	return s, ok
}

func (c *Controller) RegisteredActuator(id string) (protoio.Actuator, bool) {
	if c.actuators == nil {
		return nil, false
	}
	a, ok := c.actuators[id]
	return a, ok
}

func (c *Controller) Tick(ctx context.Context) ([]float64, error) {
	inputs := make([]float64, 0, c.layout.Input)
	for _, sensorID := range c.sensorIDs {
		sensor, ok := c.sensors[sensorID]
		if !ok {
			return nil, fmt.Errorf("sensor not registered: %s", sensorID)
		}
		values, err := sensor.Read(ctx)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, values...)
	}
	return c.execute(ctx, inputs)
}

// RunStep feeds inputs directly, bypassing sensors.
func (c *Controller) RunStep(ctx context.Context, inputs []float64) ([]float64, error) {
	return c.execute(ctx, inputs)
}

func (c *Controller) execute(ctx context.Context, inputs []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) != c.layout.Input {
		return nil, fmt.Errorf("%w: input size mismatch: got=%d want=%d", nn.ErrConfiguration, len(inputs), c.layout.Input)
	}

	duty := make([]float64, 0, c.OutputCount())
	for i, net := range c.networks {
		if _, err := net.Compute(inputs); err != nil {
			return nil, fmt.Errorf("network %d: %w", i, err)
		}
		duty = append(duty, net.DutyCycles()...)
	}
	targets := c.actuation.Targets(duty)

	if len(c.actuatorIDs) > 0 {
		chunks, err := splitOutputsForActuators(targets, len(c.actuatorIDs))
		if err != nil {
			return nil, err
		}
		for i, actuatorID := range c.actuatorIDs {
			actuator, ok := c.actuators[actuatorID]
			if !ok {
				return nil, fmt.Errorf("actuator not registered: %s", actuatorID)
			}
			if err := actuator.Write(ctx, chunks[i]); err != nil {
				return nil, err
			}
		}
	}
	return targets, nil
}

// DutyCycles returns the output duty cycles of every network in order.
func (c *Controller) DutyCycles() []float64 {
	out := make([]float64, 0, c.OutputCount())
	for _, net := range c.networks {
		out = append(out, net.DutyCycles()...)
	}
	return out
}

// Reset returns every neuron to rest and clears per-episode component state;
// called at the start of each episode.
func (c *Controller) Reset() {
	for _, net := range c.networks {
		net.Reset()
	}
	for _, sensor := range c.sensors {
		if r, ok := sensor.(protoio.Resetter); ok {
			r.Reset()
		}
	}
	for _, actuator := range c.actuators {
		if r, ok := actuator.(protoio.Resetter); ok {
			r.Reset()
		}
	}
}

func splitOutputsForActuators(outputs []float64, actuatorCount int) ([][]float64, error) {
	if actuatorCount <= 0 {
		return nil, fmt.Errorf("actuator count must be > 0")
	}
	// A single actuator receives the full output vector, N actuators receive
	// equal contiguous slices.
	if actuatorCount == 1 {
		return [][]float64{append([]float64(nil), outputs...)}, nil
	}
	if len(outputs)%actuatorCount != 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("actuator/output shape mismatch: outputs=%d actuators=%d", len(outputs), actuatorCount)
	}
	return nn.Group(outputs, len(outputs)/actuatorCount), nil
}
