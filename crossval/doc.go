// SPDX-License-Identifier: MIT

// Package crossval runs leave-one-fold-out cross-validation on the
// observations × features matrix of one grid cell.
//
// For every distinct fold id f (ascending), observations with fold f are held
// out for testing and every other labelled observation forms the training
// pool. With training groups configured, each fold is repeated Reps times,
// each time on an independent balanced resampling of the pool (see package
// resample); otherwise each fold runs once on the pool as is.
//
// One iteration walks the states
//
//	Idle → Training → Testing → Aggregating → Done
//
// and may end in Failed from Training or Testing. A failure aborts the whole
// run with a *TrainingError carrying the fold, repetition, stage and grid
// cell; it wraps ErrTraining.
//
// Built-in train/test functions (nearest centroid, ridge regression) and
// metrics (accuracy, mean squared error, Pearson correlation) are available
// by name through LookupTrainer, LookupTester and LookupMetric.
package crossval
