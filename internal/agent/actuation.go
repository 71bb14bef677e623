package agent

import "fmt"

const (
	ActuatorMinLength = 0.6
	ActuatorMaxLength = 1.6
)

// Actuation converts output-layer duty cycles into actuator target
// lengths: duty*Scale + Offset, clamped to [Min, Max].
type Actuation struct {
	Scale  float64 `json:"scale" yaml:"scale"`
	Offset float64 `json:"offset" yaml:"offset"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

func DefaultActuation() Actuation {
	return Actuation{
		Scale:  1.0,
		Offset: ActuatorMinLength,
		Min:    ActuatorMinLength,
		Max:    ActuatorMaxLength,
	}
}

// Validate checks that [Min, Max] is ordered and lies within the lengths
// the voxel actuators can reach.
func (a Actuation) Validate() error {
	return ValidateRange(a.Min, a.Max)
}

func ValidateRange(lo, hi float64) error {
	if lo > hi {
		return fmt.Errorf("actuator min %f exceeds max %f", lo, hi)
	}
	if lo < ActuatorMinLength || hi > ActuatorMaxLength {
		return fmt.Errorf("actuator range [%g, %g] is outside the actuator limits [%g, %g]",
			lo, hi, ActuatorMinLength, ActuatorMaxLength)
	}
	return nil
}

func (a Actuation) Target(duty float64) float64 {
	return Clamp(duty*a.Scale+a.Offset, a.Min, a.Max)
}

func (a Actuation) Targets(duty []float64) []float64 {
	out := make([]float64, len(duty))
	for i, d := range duty {
		out[i] = a.Target(d)
	}
	return out
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
