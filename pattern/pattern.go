// SPDX-License-Identifier: MIT

package pattern

import (
	"fmt"
	"math"
	"strconv"
)

// Range is one time (ms) or frequency (Hz) element: the covered interval,
// its representative average and a display label.
type Range struct {
	Start float64
	End   float64
	Avg   float64
	Label string
}

// IsPlaceholder reports whether r stands for an empty bin.
func (r Range) IsPlaceholder() bool {
	return math.IsNaN(r.Start) && math.IsNaN(r.End) && math.IsNaN(r.Avg)
}

// Placeholder returns the NaN element emitted for an empty range bin.
func Placeholder(label string) Range {
	return Range{Start: nan, End: nan, Avg: nan, Label: label}
}

// RangeLabel formats the synthesized "<start> to <end> <unit>" label.
func RangeLabel(start, end float64, unit string) string {
	s := strconv.FormatFloat(start, 'g', -1, 64) + " to " + strconv.FormatFloat(end, 'g', -1, 64)
	if unit != "" {
		s += " " + unit
	}

	return s
}

// Units of the numeric-range axes.
const (
	TimeUnit = "ms"
	FreqUnit = "Hz"
)

// UniformRanges builds n consecutive elements of the given step starting at
// start, each labelled with RangeLabel. Handy for fixtures and for upstream
// extraction that samples at a fixed rate.
func UniformRanges(start, step float64, n int, unit string) []Range {
	out := make([]Range, n)
	for i := range out {
		s := start + float64(i)*step
		out[i] = Range{Start: s, End: s + step, Avg: s + step/2, Label: RangeLabel(s, s+step, unit)}
	}

	return out
}

// Dims holds the four dimension descriptors of a pattern.
type Dims struct {
	Events *Records
	Chans  *Records
	Time   []Range
	Freq   []Range
}

// Len returns the element count of one axis.
func (d Dims) Len(ax Axis) int {
	switch ax {
	case Obs:
		return d.Events.Len()
	case Chan:
		return d.Chans.Len()
	case Time:
		return len(d.Time)
	case Freq:
		return len(d.Freq)
	}

	return 0
}

// Shape returns the array shape implied by the descriptors.
func (d Dims) Shape() Shape {
	return Shape{d.Len(Obs), d.Len(Chan), d.Len(Time), d.Len(Freq)}
}

// Pattern is a labelled rank-4 array together with its descriptors and the
// identity and creation parameters of the artifact it belongs to.
type Pattern struct {
	Name   string
	Source string
	Array  *Array
	Dims   Dims
	Params map[string]string
}

// Validate checks that every array extent equals its descriptor's element
// count and that no axis is empty.
func (p *Pattern) Validate() error {
	if p == nil || p.Array == nil {
		return patternErrorf("Pattern.Validate", fmt.Errorf("%w: missing array", ErrShape))
	}
	shape := p.Array.Shape()
	for _, ax := range Axes {
		if n := p.Dims.Len(ax); n != shape[ax] {
			return patternErrorf("Pattern.Validate",
				fmt.Errorf("%w: %s array length %d, descriptor has %d elements", ErrShape, ax, shape[ax], n))
		}
	}

	return shape.validate()
}
