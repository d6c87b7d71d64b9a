// SPDX-License-Identifier: MIT
// Package: aggregate
//
// reduce.go — NaN-tolerant averaging of index groups along any axis.
//
// Numeric policy (identical on every axis):
//   - NaN entries are excluded from a mean.
//   - A mean over values that are all NaN, or over an empty group, is NaN.

package aggregate

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// NanMean returns the mean of the non-NaN values, or NaN if there are none.
// vals is not modified.
func NanMean(vals []float64) float64 {
	kept := slices.DeleteFunc(slices.Clone(vals), math.IsNaN)
	if len(kept) == 0 {
		return math.NaN()
	}

	return floats.Sum(kept) / float64(len(kept))
}

// accumulator holds running NaN-excluding sums for one output slice.
type accumulator struct {
	sum []float64
	cnt []float64
}

func newAccumulator(n int) *accumulator {
	return &accumulator{sum: make([]float64, n), cnt: make([]float64, n)}
}

func (acc *accumulator) reset() {
	for i := range acc.sum {
		acc.sum[i], acc.cnt[i] = 0, 0
	}
}

// add folds one slice of values into the running sums.
func (acc *accumulator) add(vals []float64) {
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		acc.sum[i] += v
		acc.cnt[i]++
	}
}

// mean writes sum/count into dst, NaN where nothing was counted.
func (acc *accumulator) mean(dst []float64) {
	copy(dst, acc.sum)
	floats.Div(dst, acc.cnt) // 0/0 yields NaN for all-NaN positions
}

// Groups holds one optional partition per axis; nil passes the axis through.
type Groups [pattern.Rank][][]int

// Reduce averages a along every axis that has groups. The result has
// len(groups[ax]) elements on each grouped axis.
// Complexity: O(size(a) · overlap) per grouped axis.
func Reduce(a *pattern.Array, groups Groups) (*pattern.Array, error) {
	out := a
	for _, ax := range pattern.Axes {
		if groups[ax] == nil {
			continue
		}
		var err error
		if out, err = ReduceAxis(out, ax, groups[ax]); err != nil {
			return nil, err
		}
	}
	if out == a {
		out = a.Clone()
	}

	return out, nil
}

// ReduceAxis averages a along one axis.
func ReduceAxis(a *pattern.Array, ax pattern.Axis, groups [][]int) (*pattern.Array, error) {
	shape := a.Shape()
	if len(groups) == 0 {
		return nil, fmt.Errorf("aggregate: %s: %w: no groups", ax, pattern.ErrShape)
	}
	for b, g := range groups {
		for _, i := range g {
			if i < 0 || i >= shape[ax] {
				return nil, fmt.Errorf("aggregate: %s group %d: %w: index %d (len %d)",
					ax, b, pattern.ErrOutOfRange, i, shape[ax])
			}
		}
	}

	outer, inner := 1, 1
	for k := 0; k < int(ax); k++ {
		outer *= shape[k]
	}
	for k := int(ax) + 1; k < pattern.Rank; k++ {
		inner *= shape[k]
	}
	outShape := shape
	outShape[ax] = len(groups)
	out, err := pattern.NewArray(outShape)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %s: %w", ax, err)
	}

	src, dst := a.Data(), out.Data()
	n := shape[ax]
	acc := newAccumulator(inner)
	for o := 0; o < outer; o++ {
		for b, g := range groups {
			acc.reset()
			for _, i := range g {
				base := (o*n + i) * inner
				acc.add(src[base : base+inner])
			}
			base := (o*len(groups) + b) * inner
			acc.mean(dst[base : base+inner])
		}
	}

	return out, nil
}
