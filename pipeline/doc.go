// SPDX-License-Identifier: MIT

// Package pipeline wires the toolbox into its two end-to-end operations.
//
// CreatePattern resolves the bin specs, aggregates the observations of an
// upstream source (or rebins an existing pattern) and saves one Pattern
// artifact. Classify derives targets, folds and training groups from a
// pattern's events, runs cross-validation on every cell of the iteration
// grid, assembles the results and saves one Stat artifact.
//
// Configuration problems (missing specs, unknown fields, a partitioned
// observations axis, empty bins) are reported before any array is read, and
// every error names the artifact path that would have been written. With
// overwrite disabled, an operation whose target already exists does nothing
// and reports Skipped.
package pipeline
