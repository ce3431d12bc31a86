// Package weights validates and normalizes category weight sets used to
// combine per-category sub-scores into one overall score.
package weights

import (
	"errors"
	"fmt"
	"math"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// DefaultTolerance absorbs floating-point and manual-entry rounding while
// still catching gross misconfiguration such as a forgotten category or a
// duplicated entry.
const DefaultTolerance = 0.01

// ErrOutOfTolerance is returned when a weight set does not sum to 1.0
// within tolerance. It is fatal to any scoring attempt using that
// configuration and must be caught at configuration load time.
var ErrOutOfTolerance = errors.New("weights: sum out of tolerance")

// Sum returns the arithmetic sum of the weights. Empty input sums to 0.
func Sum(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	return total
}

// IsValid reports whether the weights sum to 1.0 within the given tolerance.
// An empty or nil sequence is invalid.
func IsValid(weights []float64, tolerance float64) bool {
	if len(weights) == 0 {
		return false
	}
	return math.Abs(Sum(weights)-1.0) <= tolerance
}

// Normalize scales the weights so they sum to 1.0. If the sum is exactly
// zero, it returns uniform weights (1/n each) to avoid division by zero.
func Normalize(weights []float64) []float64 {
	if len(weights) == 0 {
		return nil
	}

	out := make([]float64, len(weights))
	sum := Sum(weights)
	if sum == 0 {
		uniform := 1.0 / float64(len(weights))
		for i := range out {
			out[i] = uniform
		}
		return out
	}

	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}

// RequireValid fails fast on a bad weight set. The error reports the actual
// sum at 4-decimal precision and the context label (e.g. "category weights")
// so a misconfigured template is caught at load time rather than silently
// mis-scoring every assessment that uses it.
func RequireValid(weights []float64, context string) error {
	return RequireValidTolerance(weights, context, DefaultTolerance)
}

// RequireValidTolerance is RequireValid with an explicit tolerance.
func RequireValidTolerance(weights []float64, context string, tolerance float64) error {
	if IsValid(weights, tolerance) {
		return nil
	}
	return fmt.Errorf("%w: %s sum to %.4f, want 1.0 ±%.2g", ErrOutOfTolerance, context, Sum(weights), tolerance)
}

// NormalizeSet returns a copy of the weight set with normalized weights,
// preserving key order.
func NormalizeSet(set interfaces.CategoryWeightSet) interfaces.CategoryWeightSet {
	normalized := Normalize(set.Values())
	out := make(interfaces.CategoryWeightSet, len(set))
	for i, cw := range set {
		out[i] = interfaces.CategoryWeight{Key: cw.Key, Weight: normalized[i]}
	}
	return out
}
