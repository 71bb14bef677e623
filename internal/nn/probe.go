package nn

import (
	"fmt"
	"math/rand"
)

// Probe drives the network with uniform [0,1) inputs for steps ticks and
// returns the output layer's duty cycles afterwards. Network state is not
// reset before or after.
func (n *Network) Probe(steps int, rng *rand.Rand) ([]float64, error) {
	if rng == nil {
		return nil, fmt.Errorf("probe requires a random source")
	}
	inputs := make([]float64, n.layout.Input)
	for step := 0; step < steps; step++ {
		for i := range inputs {
			inputs[i] = rng.Float64()
		}
		if _, err := n.Compute(inputs); err != nil {
			return nil, fmt.Errorf("probe step %d: %w", step, err)
		}
	}
	return n.DutyCycles(), nil
}
