// SPDX-License-Identifier: MIT
// Package: pattern
//
// errors.go — the error taxonomy shared by every package of the toolbox.
//
// Error policy:
//   - Only sentinel variables are exposed here; callers branch with errors.Is.
//   - Call sites attach context with fmt.Errorf("...: %w", ErrX) naming the
//     offending field, spec or artifact path.
//   - ErrConfig, ErrShape and ErrSpecType are configuration-time errors: they
//     are returned before any array is touched and before any artifact is written.
//
// The remaining two classes of the taxonomy live next to the code that raises
// them: crossval.ErrTraining and artifact.ErrLockTimeout.

package pattern

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when a required spec is missing (regressor, selector,
	// fold or bin definitions), when a spec is semantically invalid, or when the
	// observations axis is partitioned during classification.
	ErrConfig = errors.New("pattern: invalid configuration")

	// ErrShape is returned when binning or aggregation would yield a zero-length
	// axis, when an array extent disagrees with its dimension descriptor, or when
	// assembled results disagree on their fold/repetition count.
	ErrShape = errors.New("pattern: invalid shape")

	// ErrSpecType is returned when a bin specification value has an unsupported
	// shape or type.
	ErrSpecType = errors.New("pattern: unsupported spec type")

	// ErrOutOfRange indicates an index outside the extent of its axis.
	ErrOutOfRange = errors.New("pattern: index out of range")

	// ErrUnknownField indicates a field name absent from a record table.
	// It is always reported together with ErrConfig.
	ErrUnknownField = errors.New("pattern: unknown field")
)

// patternErrorf wraps err with the operation name, mirroring "<Op>: <cause>".
func patternErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
