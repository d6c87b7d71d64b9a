// Package toolbox is the root of the EEG analysis toolbox: binning of
// multi-dimensional EEG patterns and cross-validated pattern classification,
// with every result persisted as a named artifact.
//
// 🚀 What is in the box?
//
//	• Patterns: rank-4 arrays (events × channels × time × frequency) plus
//	  per-axis descriptors (event records, channel records, time and
//	  frequency ranges)
//	• Binning: explicit index groups, value ranges, field membership,
//	  predicate expressions, collapse-all and one-per-element
//	• Aggregation: NaN-excluding means along any axis, streamed over events
//	• Cross-validation: leave-one-fold-out with optional over/under-sampling
//	  and repetitions, run on every cell of a channel/time/frequency grid
//	• Artifacts: gob files with a lock-protected, atomic save
//
// Packages:
//
//	pattern/   — Array, Records, Range, Dims and Pattern
//	binning/   — bin specs, parsing and resolution into index groups
//	aggregate/ — NanMean, Reduce, BinStream, BinPattern, Build
//	grid/      — partition grids and parallel per-cell execution
//	selector/  — targets, folds and training groups from event fields
//	resample/  — over- and under-sampling of training indices
//	crossval/  — the fold validator, built-in classifiers and metrics
//	results/   — Stat assembly and per-metric arrays
//	artifact/  — the on-disk store
//	pipeline/  — create_pattern and classify with skip/overwrite policy
//	config/    — YAML run configuration
//	logging/   — zap logger construction
//
// Data flow:
//
//	raw pattern ──bin──▶ binned pattern ──classify──▶ stat
//	      │                    │                        │
//	      └────────── artifact store (<root>/<source>/<kind>/) ─┘
//
// The eegtk command (cmd/eegtk) drives both operations from a config file:
//
//	go run ./cmd/eegtk bin -c run.yaml
//	go run ./cmd/eegtk classify -c run.yaml
package toolbox
