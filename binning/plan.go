// SPDX-License-Identifier: MIT

package binning

import (
	"fmt"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Plan is the resolved form of a Specs value for one set of descriptors.
// Groups[ax] is nil for pass-through axes.
type Plan struct {
	Groups [pattern.Rank][][]int
	Dims   pattern.Dims
}

// Shape returns the array shape after binning.
func (p Plan) Shape() pattern.Shape { return p.Dims.Shape() }

// Resolve binds every non-nil spec to its axis descriptor. It touches no
// array data, so configuration errors surface before any reduction starts.
func Resolve(d pattern.Dims, specs Specs, opts ...Option) (Plan, error) {
	plan := Plan{Dims: d}
	var err error
	for _, ax := range pattern.Axes {
		s := specs[ax]
		if s == nil {
			continue
		}
		if err = checkAxisKind(ax, *s); err != nil {
			return Plan{}, err
		}
		switch ax {
		case pattern.Obs:
			plan.Groups[ax], plan.Dims.Events, err = ResolveRecords(d.Events, *s, opts...)
		case pattern.Chan:
			plan.Groups[ax], plan.Dims.Chans, err = ResolveRecords(d.Chans, *s, opts...)
		case pattern.Time:
			plan.Groups[ax], plan.Dims.Time, err = ResolveRanges(d.Time, *s, pattern.TimeUnit)
		case pattern.Freq:
			plan.Groups[ax], plan.Dims.Freq, err = ResolveRanges(d.Freq, *s, pattern.FreqUnit)
		}
		if err != nil {
			return Plan{}, fmt.Errorf("%s: %w", ax, err)
		}
	}

	return plan, nil
}

// Partition resolves one axis into its index groups only, as used to iterate
// a sub-grid. A nil spec yields a nil partition (whole axis).
func Partition(d pattern.Dims, ax pattern.Axis, s *Spec, opts ...Option) ([][]int, error) {
	if s == nil {
		return nil, nil
	}
	var specs Specs
	specs[ax] = s
	plan, err := Resolve(d, specs, opts...)
	if err != nil {
		return nil, err
	}

	return plan.Groups[ax], nil
}
