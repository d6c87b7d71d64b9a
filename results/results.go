// SPDX-License-Identifier: MIT

// Package results reshapes a grid of cross-validation outcomes into one
// uniform Stat array.
//
// Every cell of the grid holds the same number of (fold, repetition)
// records because all cells share one fold vector. Assemble re-flattens
// each cell's record sequence into the first axis and stacks the cells over
// the remaining three axes, giving shape (folds·reps, chan, time, freq).
package results

import (
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/mortonne/eeg-analysis-toolbox/aggregate"
	"github.com/mortonne/eeg-analysis-toolbox/crossval"
	"github.com/mortonne/eeg-analysis-toolbox/grid"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Stat is the classification artifact: one record per (fold·rep, cell).
type Stat struct {
	Name    string
	Source  string
	Params  map[string]string
	RunID   string
	Shape   pattern.Shape
	Records []crossval.Record // row-major over Shape
	Dims    pattern.Dims      // Events is nil; the other axes describe the cells
}

// Assemble builds a Stat from a classification grid. The observations axis
// of the grid must have a single group and every cell must hold the same
// number of records; otherwise it returns ErrShape.
// Complexity: O(cells · records).
func Assemble(g *grid.Grid[[]crossval.Record]) (*Stat, error) {
	gs := g.Shape()
	if gs[pattern.Obs] != 1 {
		return nil, fmt.Errorf("results: grid has %d observation groups, want 1: %w", gs[pattern.Obs], pattern.ErrShape)
	}
	cells := g.Cells()
	n := len(cells[0])
	for i, recs := range cells {
		if len(recs) != n {
			return nil, fmt.Errorf("results: cell %v has %d records, cell %v has %d: %w",
				g.Coord(i), len(recs), g.Coord(0), n, pattern.ErrShape)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("results: cells hold no records: %w", pattern.ErrShape)
	}

	shape := pattern.Shape{n, gs[pattern.Chan], gs[pattern.Time], gs[pattern.Freq]}
	inner := len(cells) // cells are ordered (chan, time, freq) since obs has one group
	out := make([]crossval.Record, shape.Size())
	for c, recs := range cells {
		for k, r := range recs {
			out[k*inner+c] = r
		}
	}

	return &Stat{RunID: uuid.NewString(), Shape: shape, Records: out}, nil
}

// At returns the record at (fold·rep position, chan, time, freq).
func (s *Stat) At(k, c, t, f int) (crossval.Record, error) {
	idx := [pattern.Rank]int{k, c, t, f}
	off := 0
	for ax, i := range idx {
		if i < 0 || i >= s.Shape[ax] {
			return crossval.Record{}, fmt.Errorf("results: %s position %d (len %d): %w",
				pattern.Axis(ax), i, s.Shape[ax], pattern.ErrOutOfRange)
		}
		off = off*s.Shape[ax] + i
	}
	return s.Records[off], nil
}

// Perf returns the named metric of every record as an array of s.Shape.
func (s *Stat) Perf(metric string) (*pattern.Array, error) {
	arr, err := pattern.NewArray(s.Shape)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	data := arr.Data()
	for i, r := range s.Records {
		v, ok := r.Perf[metric]
		if !ok {
			return nil, fmt.Errorf("results: record %d has no metric %q: %w", i, metric, pattern.ErrConfig)
		}
		data[i] = v
	}
	return arr, nil
}

// MeanPerf averages the named metric over folds and repetitions, giving an
// array of shape (1, chan, time, freq). NaN scores are skipped.
func (s *Stat) MeanPerf(metric string) (*pattern.Array, error) {
	perf, err := s.Perf(metric)
	if err != nil {
		return nil, err
	}
	return aggregate.ReduceAxis(perf, pattern.Obs, [][]int{pattern.Identity(s.Shape[pattern.Obs])})
}

// Metrics lists the metric names of the first record, sorted.
func (s *Stat) Metrics() []string {
	if len(s.Records) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(s.Records[0].Perf))
}
