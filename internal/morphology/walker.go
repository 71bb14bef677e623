package morphology

import (
	"math"

	protoio "spikewalk/internal/io"
)

// WalkerMorphology is a single row of actuated voxels.
type WalkerMorphology struct {
	Voxels int
}

func (WalkerMorphology) Name() string {
	return "walker-v1"
}

func (WalkerMorphology) Sensors() []string {
	return []string{protoio.CornerDistanceSensorName}
}

func (WalkerMorphology) Actuators() []string {
	return []string{protoio.MuscleLengthActuatorName}
}

func (WalkerMorphology) Compatible(scape string) bool {
	return scape == "walker"
}

// ActuatorCount is one actuator per voxel.
func (m WalkerMorphology) ActuatorCount() int {
	return m.Voxels
}

// CornerDistances measures the robot's two diagonals: bottom-left to
// top-right and bottom-right to top-left. Corners are the point masses
// extreme along x+y and x-y.
type CornerDistances struct{}

func (CornerDistances) FeatureCount() int {
	return 2
}

func (CornerDistances) Features(pos Positions) ([]float64, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	bl, tr, br, tl := 0, 0, 0, 0
	for i := range pos.X {
		sum := pos.X[i] + pos.Y[i]
		diff := pos.X[i] - pos.Y[i]
		if sum < pos.X[bl]+pos.Y[bl] {
			bl = i
		}
		if sum > pos.X[tr]+pos.Y[tr] {
			tr = i
		}
		if diff > pos.X[br]-pos.Y[br] {
			br = i
		}
		if diff < pos.X[tl]-pos.Y[tl] {
			tl = i
		}
	}
	return []float64{
		distance(pos, bl, tr),
		distance(pos, br, tl),
	}, nil
}

func distance(pos Positions, a, b int) float64 {
	return math.Hypot(pos.X[a]-pos.X[b], pos.Y[a]-pos.Y[b])
}
