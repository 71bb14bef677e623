package nn

import "fmt"

// Layout is the shape of a two-layer spiking network and defines how a flat
// genome maps onto it: hidden neurons first, then output neurons, each
// neuron contributing its synaptic weights followed by its bias.
type Layout struct {
	Input  int `json:"input" yaml:"input"`
	Hidden int `json:"hidden" yaml:"hidden"`
	Output int `json:"output" yaml:"output"`
}

func (l Layout) Validate() error {
	if l.Input <= 0 || l.Hidden <= 0 || l.Output <= 0 {
		return fmt.Errorf("%w: layout sizes must be > 0, got input=%d hidden=%d output=%d", ErrConfiguration, l.Input, l.Hidden, l.Output)
	}
	return nil
}

func (l Layout) HiddenLen() int {
	return l.Hidden * (l.Input + 1)
}

func (l Layout) OutputLen() int {
	return l.Output * (l.Hidden + 1)
}

// Len is the exact genome length the layout accepts.
func (l Layout) Len() int {
	return l.HiddenLen() + l.OutputLen()
}

// Split cuts flat into its hidden and output segments. The returned slices
// alias flat.
func (l Layout) Split(flat []float64) (hidden, output []float64, err error) {
	if len(flat) != l.Len() {
		return nil, nil, fmt.Errorf("%w: network expects %d weights, got %d", ErrConfiguration, l.Len(), len(flat))
	}
	cut := l.HiddenLen()
	return flat[:cut], flat[cut:], nil
}

func (l Layout) String() string {
	return fmt.Sprintf("%d-%d-%d", l.Input, l.Hidden, l.Output)
}

// Group cuts flat into consecutive chunks of size n. The final chunk is
// shorter when len(flat) is not a multiple of n.
func Group(flat []float64, n int) [][]float64 {
	if n <= 0 {
		return nil
	}
	out := make([][]float64, 0, (len(flat)+n-1)/n)
	for i := 0; i < len(flat); i += n {
		end := min(i+n, len(flat))
		out = append(out, append([]float64(nil), flat[i:end]...))
	}
	return out
}
