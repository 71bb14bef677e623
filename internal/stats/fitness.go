package stats

import (
	"math"
	"sort"

	"spikewalk/internal/model"
)

// FitnessStats summarises the fitness values of one batch or run.
type FitnessStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	// Walking counts entries that moved forward, fitness above Offset.
	Walking int     `json:"walking"`
	Offset  float64 `json:"offset"`
}

// Summarize uses the population standard deviation.
func Summarize(values []float64, offset float64) FitnessStats {
	out := FitnessStats{Count: len(values), Offset: offset}
	if len(values) == 0 {
		return out
	}
	out.Min = values[0]
	out.Max = values[0]
	total := 0.0
	for _, v := range values {
		total += v
		if v > out.Max {
			out.Max = v
		}
		if v < out.Min {
			out.Min = v
		}
		if model.FitterThan(v, offset) {
			out.Walking++
		}
	}
	out.Mean = total / float64(len(values))
	sumSq := 0.0
	for _, v := range values {
		diff := out.Mean - v
		sumSq += diff * diff
	}
	out.Std = math.Sqrt(sumSq / float64(len(values)))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		out.Median = sorted[mid]
	} else {
		out.Median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return out
}

// WalkingRate is the share of entries that moved forward.
func (s FitnessStats) WalkingRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Walking) / float64(s.Count)
}
