// SPDX-License-Identifier: MIT

package crossval

import (
	"errors"
	"fmt"

	"github.com/mortonne/eeg-analysis-toolbox/grid"
)

// ErrTraining marks a failure of a training, testing or metric function.
var ErrTraining = errors.New("crossval: training failed")

// TrainingError locates a failed iteration.
type TrainingError struct {
	Fold  int
	Rep   int
	Stage State
	Cell  grid.Coord
	Err   error
}

// Error implements error.
func (e *TrainingError) Error() string {
	return fmt.Sprintf("crossval: fold %d rep %d failed while %s (cell %v): %v",
		e.Fold, e.Rep, e.Stage, e.Cell, e.Err)
}

// Unwrap exposes both ErrTraining and the underlying cause.
func (e *TrainingError) Unwrap() []error { return []error{ErrTraining, e.Err} }
