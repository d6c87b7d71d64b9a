// SPDX-License-Identifier: MIT

package crossval

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Built-in functions by configuration name.
var (
	Trainers = map[string]TrainFunc{
		"centroid": TrainCentroid,
		"ridge":    TrainRidge,
	}
	Testers = map[string]TestFunc{
		"centroid": PredictCentroid,
		"ridge":    PredictRidge,
	}
	Metrics = map[string]MetricFunc{
		"accuracy":    Accuracy,
		"mse":         MeanSquaredError,
		"correlation": Correlation,
	}
)

// LookupTrainer returns the named training function.
func LookupTrainer(name string) (TrainFunc, error) { return lookup("trainer", Trainers, name) }

// LookupTester returns the named testing function.
func LookupTester(name string) (TestFunc, error) { return lookup("tester", Testers, name) }

// LookupMetric returns the named metric function.
func LookupMetric(name string) (MetricFunc, error) { return lookup("metric", Metrics, name) }

func lookup[F any](kind string, reg map[string]F, name string) (F, error) {
	fn, ok := reg[name]
	if !ok {
		var zero F
		return zero, fmt.Errorf("crossval: unknown %s %q (have %v): %w",
			kind, name, slices.Sorted(maps.Keys(reg)), pattern.ErrConfig)
	}
	return fn, nil
}
