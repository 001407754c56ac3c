package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// WeightCount is the number of signals combined by the v2 scorer.
const WeightCount = 8

// Signal positions inside Weights.
const (
	SignalAvgProfit = iota
	SignalSuccessRate
	SignalConsistency
	SignalCancellation
	SignalFlipCount
	SignalROI
	SignalBuyLimit
	SignalInverseBuyLimit
)

// Weights is the v2 weight vector. A valid vector has every entry in [0,1]
// and sums to 1.
type Weights [WeightCount]float64

// DefaultWeights were found by the optimizer on a real flip log.
var DefaultWeights = Weights{0.118973, 0.197536, 0.136292, 0.0262364, 0.0178793, 0.146605, 0.138587, 0.217891}

const weightTolerance = 1e-6

// UniformWeights gives every signal the same weight.
func UniformWeights() Weights {
	var w Weights
	for i := range w {
		w[i] = 1.0 / WeightCount
	}
	return w
}

// Sum adds up all weights.
func (w Weights) Sum() float64 {
	return floats.Sum(w[:])
}

// Normalize clamps every weight into [0,1] and rescales the vector so it sums
// to 1. It reports false and leaves w untouched when the clamped sum is 0.
func (w *Weights) Normalize() bool {
	clamped := *w
	for i, v := range clamped {
		clamped[i] = clamp(v, 0, 1)
	}
	sum := clamped.Sum()
	if sum == 0 {
		return false
	}
	floats.Scale(1/sum, clamped[:])
	*w = clamped
	return true
}

// Valid reports whether the vector satisfies the weight invariants.
func (w Weights) Valid() bool {
	for _, v := range w {
		if v < 0 || v > 1 {
			return false
		}
	}
	sum := w.Sum()
	return sum > 1-weightTolerance && sum < 1+weightTolerance
}

func (w Weights) String() string {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// WeightsFrom builds a normalized weight vector from a slice of exactly
// WeightCount values.
func WeightsFrom(values []float64) (Weights, error) {
	var w Weights
	if len(values) != WeightCount {
		return w, fmt.Errorf("expected %d weights, got %d", WeightCount, len(values))
	}
	copy(w[:], values)
	if !w.Normalize() {
		return w, fmt.Errorf("weights sum to zero")
	}
	return w, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
