package nn

import (
	"fmt"
	"math/rand"
)

// Layer is an ordered set of neurons fed the same input vector.
type Layer struct {
	neurons []*Neuron
	inputs  int
}

func NewLayer(count, inputs int, rng *rand.Rand) *Layer {
	if count < 0 {
		count = 0
	}
	if inputs < 0 {
		inputs = 0
	}
	l := &Layer{neurons: make([]*Neuron, count), inputs: inputs}
	for i := range l.neurons {
		l.neurons[i] = NewNeuron(inputs, rng)
	}
	return l
}

func (l *Layer) Len() int {
	return len(l.neurons)
}

func (l *Layer) Inputs() int {
	return l.inputs
}

// Neuron returns the i-th neuron or nil when i is out of range.
func (l *Layer) Neuron(i int) *Neuron {
	if i < 0 || i >= len(l.neurons) {
		return nil
	}
	return l.neurons[i]
}

// WeightCount is the length of the flat buffer SetWeights accepts.
func (l *Layer) WeightCount() int {
	total := 0
	for _, n := range l.neurons {
		total += len(n.weights)
	}
	return total
}

func (l *Layer) Compute(inputs []float64) ([]float64, error) {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		v, err := n.Compute(inputs)
		if err != nil {
			return nil, fmt.Errorf("neuron %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// SetWeights splits flat into one contiguous chunk per neuron. The whole
// buffer is validated before any neuron is touched, so a rejected vector
// leaves the layer unchanged.
func (l *Layer) SetWeights(flat []float64) error {
	if len(l.neurons) == 0 {
		return nil
	}
	if want := l.WeightCount(); len(flat) != want {
		return fmt.Errorf("%w: layer expects %d weights, got %d", ErrConfiguration, want, len(flat))
	}
	chunks := Group(flat, len(flat)/len(l.neurons))
	for i, n := range l.neurons {
		var chunk []float64
		if i < len(chunks) {
			chunk = chunks[i]
		}
		if err := n.SetWeights(chunk); err != nil {
			return fmt.Errorf("neuron %d: %w", i, err)
		}
	}
	return nil
}

// Weights returns the layer's flat weight buffer in neuron order.
func (l *Layer) Weights() []float64 {
	out := make([]float64, 0, l.WeightCount())
	for _, n := range l.neurons {
		out = append(out, n.weights...)
	}
	return out
}

func (l *Layer) DutyCycles() []float64 {
	out := make([]float64, len(l.neurons))
	for i, n := range l.neurons {
		out[i] = n.DutyCycle()
	}
	return out
}

func (l *Layer) Reset() {
	for _, n := range l.neurons {
		n.Reset()
	}
}
