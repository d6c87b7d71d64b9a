// SPDX-License-Identifier: MIT

package grid

import (
	"errors"
	"fmt"
)

// ErrNilWorker is returned when Run is called without a worker function.
var ErrNilWorker = errors.New("grid: worker is nil")

// CellError reports the grid cell whose worker failed.
type CellError struct {
	Coord Coord
	Err   error
}

// Error implements error.
func (e *CellError) Error() string {
	return fmt.Sprintf("grid: cell %v: %v", e.Coord, e.Err)
}

// Unwrap exposes the worker error to errors.Is / errors.As.
func (e *CellError) Unwrap() error { return e.Err }
