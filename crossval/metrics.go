// SPDX-License-Identifier: MIT

package crossval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Accuracy is the fraction of predictions equal to the truth. Observations
// with a NaN truth are not scored; with none left the result is NaN.
func Accuracy(pred, truth []float64, _ Params) (float64, error) {
	if len(pred) != len(truth) {
		return 0, fmt.Errorf("accuracy: %d predictions, %d labels", len(pred), len(truth))
	}
	hit, n := 0, 0
	for i, t := range truth {
		if math.IsNaN(t) {
			continue
		}
		n++
		if pred[i] == t {
			hit++
		}
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return float64(hit) / float64(n), nil
}

// MeanSquaredError averages the squared residuals, skipping NaN truths.
func MeanSquaredError(pred, truth []float64, _ Params) (float64, error) {
	if len(pred) != len(truth) {
		return 0, fmt.Errorf("mse: %d predictions, %d targets", len(pred), len(truth))
	}
	sum, n := 0.0, 0
	for i, t := range truth {
		if math.IsNaN(t) {
			continue
		}
		d := pred[i] - t
		sum += d * d
		n++
	}
	if n == 0 {
		return math.NaN(), nil
	}
	return sum / float64(n), nil
}

// Correlation is Pearson's r between predictions and truth.
func Correlation(pred, truth []float64, _ Params) (float64, error) {
	if len(pred) != len(truth) {
		return 0, fmt.Errorf("correlation: %d predictions, %d targets", len(pred), len(truth))
	}
	if len(pred) < 2 {
		return 0, fmt.Errorf("correlation: need at least two observations, have %d", len(pred))
	}
	return stat.Correlation(pred, truth, nil), nil
}
