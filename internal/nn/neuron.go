package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	// SpikeDecay is subtracted from a neuron's activation level every tick.
	SpikeDecay = 0.1
	// MaxBias bounds the uniform draw of a freshly constructed neuron's bias.
	MaxBias = 1.0
	// FireLogCapacity is the number of most recent fire events kept per neuron.
	FireLogCapacity = 200
	// FireLogThreshold is the history length a neuron must exceed before
	// DutyCycle reports anything but zero.
	FireLogThreshold = 30
)

var (
	// ErrConfiguration marks weight or input vectors whose length does not
	// match the shape a neuron, layer or network was built with.
	ErrConfiguration = errors.New("configuration error")
	// ErrIndexOutOfRange marks a weight index outside the neuron's buffer.
	ErrIndexOutOfRange = errors.New("weight index out of range")
)

// Neuron is a leaky integrate-and-fire unit. The last entry of its weight
// buffer is the firing threshold (bias).
type Neuron struct {
	weights []float64
	level   float64
	fireLog fireLog
}

func NewNeuron(size int, rng *rand.Rand) *Neuron {
	n := &Neuron{}
	if size <= 0 {
		return n
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	n.weights = make([]float64, size+1)
	for i := 0; i < size; i++ {
		n.weights[i] = rng.Float64()*2 - 1
	}
	n.weights[size] = rng.Float64() * MaxBias
	return n
}

// NewNeuronWithWeights builds a neuron whose synaptic weights and bias are
// taken from weights (bias last). The slice is copied.
func NewNeuronWithWeights(weights []float64) *Neuron {
	return &Neuron{weights: append([]float64(nil), weights...)}
}

// Inputs reports how many synaptic inputs the neuron expects.
func (n *Neuron) Inputs() int {
	if len(n.weights) == 0 {
		return 0
	}
	return len(n.weights) - 1
}

func (n *Neuron) Compute(inputs []float64) (float64, error) {
	if len(n.weights) == 0 {
		if len(inputs) != 0 {
			return 0, fmt.Errorf("%w: degenerate neuron got %d inputs", ErrConfiguration, len(inputs))
		}
		n.fireLog.record(false)
		return 0, nil
	}
	if len(inputs) != n.Inputs() {
		return 0, fmt.Errorf("%w: %d inputs vs %d weights", ErrConfiguration, len(inputs), len(n.weights))
	}

	n.level = math.Max(n.level-SpikeDecay, 0)

	sum := 0.0
	for i, x := range inputs {
		sum += x * n.weights[i]
	}
	n.level = math.Max(n.level+sum, 0)

	if n.level >= n.Bias() {
		n.level = 0
		n.fireLog.record(true)
		return 1, nil
	}
	n.fireLog.record(false)
	return 0, nil
}

// DutyCycle returns the fraction of logged ticks in which the neuron fired.
// Histories at or below FireLogThreshold report zero.
func (n *Neuron) DutyCycle() float64 {
	if n.fireLog.len() <= FireLogThreshold {
		return 0
	}
	return float64(n.fireLog.fires()) / float64(n.fireLog.len())
}

func (n *Neuron) Level() float64 {
	return n.level
}

// History returns the fire log oldest first.
func (n *Neuron) History() []int {
	return n.fireLog.snapshot()
}

// Reset returns the neuron to its resting state with an empty history.
// Weights are kept.
func (n *Neuron) Reset() {
	n.level = 0
	n.fireLog.clear()
}

// Weights returns a copy of the synaptic weights followed by the bias.
func (n *Neuron) Weights() []float64 {
	return append([]float64(nil), n.weights...)
}

func (n *Neuron) Bias() float64 {
	if len(n.weights) == 0 {
		return math.Inf(1)
	}
	return n.weights[len(n.weights)-1]
}

func (n *Neuron) SetWeights(weights []float64) error {
	if len(weights) != len(n.weights) {
		return fmt.Errorf("%w: neuron expects %d weights, got %d", ErrConfiguration, len(n.weights), len(weights))
	}
	copy(n.weights, weights)
	return nil
}

func (n *Neuron) SetWeight(idx int, value float64) error {
	if idx < 0 || idx >= len(n.weights) {
		return fmt.Errorf("%w: index %d, size %d", ErrIndexOutOfRange, idx, len(n.weights))
	}
	n.weights[idx] = value
	return nil
}

func (n *Neuron) SetBias(value float64) error {
	if len(n.weights) == 0 {
		return fmt.Errorf("%w: degenerate neuron has no bias", ErrIndexOutOfRange)
	}
	n.weights[len(n.weights)-1] = value
	return nil
}

// fireLog is a fixed-capacity ring of fire events.
type fireLog struct {
	buf   [FireLogCapacity]bool
	start int
	size  int
	count int
}

func (l *fireLog) record(fired bool) {
	if l.size == FireLogCapacity {
		if l.buf[l.start] {
			l.count--
		}
		l.buf[l.start] = fired
		l.start = (l.start + 1) % FireLogCapacity
	} else {
		l.buf[(l.start+l.size)%FireLogCapacity] = fired
		l.size++
	}
	if fired {
		l.count++
	}
}

func (l *fireLog) len() int   { return l.size }
func (l *fireLog) fires() int { return l.count }

func (l *fireLog) clear() {
	*l = fireLog{}
}

func (l *fireLog) snapshot() []int {
	out := make([]int, l.size)
	for i := 0; i < l.size; i++ {
		if l.buf[(l.start+i)%FireLogCapacity] {
			out[i] = 1
		}
	}
	return out
}
