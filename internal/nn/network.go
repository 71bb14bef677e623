package nn

import (
	"fmt"
	"math/rand"
)

// Network is a feed-forward pair of spiking layers. Activation levels and
// fire logs persist between Compute calls until Reset.
type Network struct {
	layout Layout
	hidden *Layer
	output *Layer
}

func NewNetwork(layout Layout, rng *rand.Rand) (*Network, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Network{
		layout: layout,
		hidden: NewLayer(layout.Hidden, layout.Input, rng),
		output: NewLayer(layout.Output, layout.Hidden, rng),
	}, nil
}

// NewNetworkWithWeights builds a network and applies flat in one step.
func NewNetworkWithWeights(layout Layout, flat []float64) (*Network, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	net := &Network{
		layout: layout,
		hidden: NewLayer(layout.Hidden, layout.Input, nil),
		output: NewLayer(layout.Output, layout.Hidden, nil),
	}
	if err := net.SetWeights(flat); err != nil {
		return nil, err
	}
	return net, nil
}

func (n *Network) Layout() Layout {
	return n.layout
}

func (n *Network) Hidden() *Layer {
	return n.hidden
}

func (n *Network) Output() *Layer {
	return n.output
}

func (n *Network) Compute(inputs []float64) ([]float64, error) {
	h, err := n.hidden.Compute(inputs)
	if err != nil {
		return nil, fmt.Errorf("hidden layer: %w", err)
	}
	out, err := n.output.Compute(h)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	return out, nil
}

// SetWeights applies a full genome. On a length mismatch the network keeps
// its previous weights.
func (n *Network) SetWeights(flat []float64) error {
	hidden, output, err := n.layout.Split(flat)
	if err != nil {
		return err
	}
	if err := n.hidden.SetWeights(hidden); err != nil {
		return fmt.Errorf("hidden layer: %w", err)
	}
	if err := n.output.SetWeights(output); err != nil {
		return fmt.Errorf("output layer: %w", err)
	}
	return nil
}

// SetWeight updates one genome entry addressed by its flat index. An index
// outside the genome is a no-op reported as ErrIndexOutOfRange.
func (n *Network) SetWeight(idx int, value float64) error {
	if idx < 0 || idx >= n.layout.Len() {
		return fmt.Errorf("%w: genome index %d, size %d", ErrIndexOutOfRange, idx, n.layout.Len())
	}
	layer, per := n.hidden, n.layout.Input+1
	if idx >= n.layout.HiddenLen() {
		idx -= n.layout.HiddenLen()
		layer, per = n.output, n.layout.Hidden+1
	}
	return layer.Neuron(idx/per).SetWeight(idx%per, value)
}

// Weights returns the genome currently held by the network.
func (n *Network) Weights() []float64 {
	return append(n.hidden.Weights(), n.output.Weights()...)
}

// DutyCycles reports the output layer's duty cycles.
func (n *Network) DutyCycles() []float64 {
	return n.output.DutyCycles()
}

func (n *Network) Reset() {
	n.hidden.Reset()
	n.output.Reset()
}
