// SPDX-License-Identifier: MIT
// Package: pattern
//
// array.go — Array, the dense row-major rank-4 storage behind every Pattern.
//
// Layout:
//   - Axes are ordered (observations, channels, time, frequency).
//   - data holds Len(Obs)*Len(Chan)*Len(Time)*Len(Freq) values with the
//     frequency axis varying fastest, so a single observation is one
//     contiguous block (see Obs).
//
// Numeric policy:
//   - NaN is a legal value and means "missing"; aggregation excludes it.

package pattern

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Axis identifies one of the four pattern dimensions.
type Axis int

const (
	// Obs is the observations (events) axis.
	Obs Axis = iota
	// Chan is the channels axis.
	Chan
	// Time is the time-bins axis.
	Time
	// Freq is the frequency-bins axis.
	Freq
)

// Rank is the number of axes of every pattern array.
const Rank = 4

// Axes lists the axes in storage order.
var Axes = [Rank]Axis{Obs, Chan, Time, Freq}

// String returns the short axis name used in configs and log fields.
func (a Axis) String() string {
	switch a {
	case Obs:
		return "events"
	case Chan:
		return "chan"
	case Time:
		return "time"
	case Freq:
		return "freq"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Shape holds the extent of every axis.
type Shape [Rank]int

// Size returns the number of elements implied by the shape.
func (s Shape) Size() int {
	return s[0] * s[1] * s[2] * s[3]
}

// Ints returns the extents as a slice, e.g. for log fields.
func (s Shape) Ints() []int { return s[:] }

// validate reports ErrShape when any extent is non-positive.
func (s Shape) validate() error {
	for ax, n := range s {
		if n <= 0 {
			return fmt.Errorf("%w: %s has length %d", ErrShape, Axis(ax), n)
		}
	}

	return nil
}

// Array is a dense rank-4 array of float64 values.
type Array struct {
	shape   Shape
	strides [Rank]int
	data    []float64 // len == shape.Size()
}

// NewArray creates a zero-filled array with the given shape.
// Returns ErrShape if any extent is non-positive.
// Complexity: O(size) time and memory.
func NewArray(shape Shape) (*Array, error) {
	if err := shape.validate(); err != nil {
		return nil, patternErrorf("NewArray", err)
	}

	return newArray(shape, make([]float64, shape.Size())), nil
}

// NewArrayFrom wraps data (not copied) as an array of the given shape.
// Returns ErrShape if the shape is invalid or len(data) != shape.Size().
func NewArrayFrom(shape Shape, data []float64) (*Array, error) {
	if err := shape.validate(); err != nil {
		return nil, patternErrorf("NewArrayFrom", err)
	}
	if len(data) != shape.Size() {
		return nil, patternErrorf("NewArrayFrom",
			fmt.Errorf("%w: %d values for shape %v", ErrShape, len(data), shape))
	}

	return newArray(shape, data), nil
}

// NewNaNArray creates an array of the given shape filled with NaN.
func NewNaNArray(shape Shape) (*Array, error) {
	a, err := NewArray(shape)
	if err != nil {
		return nil, err
	}
	for i := range a.data {
		a.data[i] = nan
	}

	return a, nil
}

func newArray(shape Shape, data []float64) *Array {
	a := &Array{shape: shape, data: data}
	a.strides[3] = 1
	a.strides[2] = shape[3]
	a.strides[1] = shape[2] * shape[3]
	a.strides[0] = shape[1] * shape[2] * shape[3]

	return a
}

// Shape returns the extent of every axis.
func (a *Array) Shape() Shape { return a.shape }

// Len returns the extent of one axis.
func (a *Array) Len(ax Axis) int { return a.shape[ax] }

// Data exposes the flat backing slice (row-major, frequency fastest).
func (a *Array) Data() []float64 { return a.data }

// offset computes the flat index or returns ErrOutOfRange.
func (a *Array) offset(idx [Rank]int) (int, error) {
	off := 0
	for ax, i := range idx {
		if i < 0 || i >= a.shape[ax] {
			return 0, fmt.Errorf("%w: %s index %d (len %d)", ErrOutOfRange, Axis(ax), i, a.shape[ax])
		}
		off += i * a.strides[ax]
	}

	return off, nil
}

// At returns the value at (obs, chan, time, freq).
func (a *Array) At(o, c, t, f int) (float64, error) {
	off, err := a.offset([Rank]int{o, c, t, f})
	if err != nil {
		return 0, patternErrorf("Array.At", err)
	}

	return a.data[off], nil
}

// Set assigns v at (obs, chan, time, freq).
func (a *Array) Set(o, c, t, f int, v float64) error {
	off, err := a.offset([Rank]int{o, c, t, f})
	if err != nil {
		return patternErrorf("Array.Set", err)
	}
	a.data[off] = v

	return nil
}

// Obs returns observation i as a (1, C, T, F) array sharing storage with a.
// Complexity: O(1).
func (a *Array) Obs(i int) (*Array, error) {
	if i < 0 || i >= a.shape[Obs] {
		return nil, patternErrorf("Array.Obs",
			fmt.Errorf("%w: observation %d (len %d)", ErrOutOfRange, i, a.shape[Obs]))
	}
	block := a.strides[0]
	shape := Shape{1, a.shape[Chan], a.shape[Time], a.shape[Freq]}

	return newArray(shape, a.data[i*block:(i+1)*block:(i+1)*block]), nil
}

// Select returns a copy holding only the given indices on every axis, in the
// given order. A nil index list selects the whole axis; an empty non-nil list
// is ErrShape.
// Complexity: O(size of result).
func (a *Array) Select(idx [Rank][]int) (*Array, error) {
	var sel [Rank][]int
	var shape Shape
	for ax := range idx {
		if idx[ax] == nil {
			sel[ax] = Identity(a.shape[ax])
		} else {
			sel[ax] = idx[ax]
		}
		for _, i := range sel[ax] {
			if i < 0 || i >= a.shape[ax] {
				return nil, patternErrorf("Array.Select",
					fmt.Errorf("%w: %s index %d (len %d)", ErrOutOfRange, Axis(ax), i, a.shape[ax]))
			}
		}
		shape[ax] = len(sel[ax])
	}
	if err := shape.validate(); err != nil {
		return nil, patternErrorf("Array.Select", err)
	}

	out := newArray(shape, make([]float64, shape.Size()))
	k := 0
	for _, o := range sel[0] {
		for _, c := range sel[1] {
			for _, t := range sel[2] {
				base := o*a.strides[0] + c*a.strides[1] + t*a.strides[2]
				for _, f := range sel[3] {
					out.data[k] = a.data[base+f]
					k++
				}
			}
		}
	}

	return out, nil
}

// Matrix flattens the array into an observations × features gonum matrix,
// where features enumerate (chan, time, freq) in storage order. The matrix
// shares storage with a.
func (a *Array) Matrix() *mat.Dense {
	return mat.NewDense(a.shape[Obs], a.strides[0], a.data)
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)

	return newArray(a.shape, data)
}

// Identity returns the index list 0..n-1.
func Identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}
