package morphology

import "fmt"

// Morphology defines allowed sensor/actuator combinations for a scape.
type Morphology interface {
	Name() string
	Sensors() []string
	Actuators() []string
	Compatible(scape string) bool
}

// Positions holds per-point-mass coordinates of one world object, indexed
// identically in X and Y.
type Positions struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

func (p Positions) Len() int {
	return len(p.X)
}

func (p Positions) Validate() error {
	if len(p.X) != len(p.Y) {
		return fmt.Errorf("position shape mismatch: x=%d y=%d", len(p.X), len(p.Y))
	}
	if len(p.X) == 0 {
		return fmt.Errorf("no point masses")
	}
	return nil
}

// MeanX is the mean horizontal coordinate of all point masses.
func (p Positions) MeanX() float64 {
	if len(p.X) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range p.X {
		sum += x
	}
	return sum / float64(len(p.X))
}

// FeatureExtractor turns raw point-mass positions into the fixed-size
// feature vector fed to a controller each tick.
type FeatureExtractor interface {
	FeatureCount() int
	Features(pos Positions) ([]float64, error)
}
