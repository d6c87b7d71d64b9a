// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"slices"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Partition is a list of index groups along one axis; nil means the whole
// axis as a single group.
type Partition [][]int

// Len returns the number of groups (1 for the whole axis).
func (p Partition) Len() int {
	if p == nil {
		return 1
	}
	return len(p)
}

// Partitions holds one partition per axis.
type Partitions [pattern.Rank]Partition

// Shape returns the grid shape implied by the partitions.
func (ps Partitions) Shape() pattern.Shape {
	var s pattern.Shape
	for ax, p := range ps {
		s[ax] = p.Len()
	}
	return s
}

// FromGroups converts resolved bin groups into partitions; nil stays nil.
func FromGroups(groups [pattern.Rank][][]int) Partitions {
	var ps Partitions
	for ax, g := range groups {
		if g != nil {
			ps[ax] = g
		}
	}
	return ps
}

// RequireWholeAxis returns ErrConfig unless ax of an n-element axis is
// left unpartitioned. A single group holding 0..n-1 in order, as a
// collapse-all spec yields, counts as unpartitioned.
func RequireWholeAxis(ps Partitions, ax pattern.Axis, n int) error {
	p := ps[ax]
	if p == nil || (len(p) == 1 && slices.Equal(p[0], pattern.Identity(n))) {
		return nil
	}
	return fmt.Errorf("grid: %s axis cannot be partitioned here (%d groups): %w",
		ax, len(p), pattern.ErrConfig)
}

// validate checks every group against the array extents.
func (ps Partitions) validate(shape pattern.Shape) error {
	for ax, p := range ps {
		if p == nil {
			continue
		}
		if len(p) == 0 {
			return fmt.Errorf("grid: %s partition has no groups: %w", pattern.Axis(ax), pattern.ErrConfig)
		}
		for g, idx := range p {
			if len(idx) == 0 {
				return fmt.Errorf("grid: %s group %d is empty: %w", pattern.Axis(ax), g, pattern.ErrShape)
			}
			for _, i := range idx {
				if i < 0 || i >= shape[ax] {
					return fmt.Errorf("grid: %s group %d: %w: index %d (len %d)",
						pattern.Axis(ax), g, pattern.ErrOutOfRange, i, shape[ax])
				}
			}
		}
	}
	return nil
}

// Coord addresses one grid cell, one group position per axis (0-based).
type Coord [pattern.Rank]int

// Grid holds one worker result per cell in axis-major order.
type Grid[T any] struct {
	shape pattern.Shape
	parts Partitions
	cells []T
}

// Shape returns the number of groups per axis.
func (g *Grid[T]) Shape() pattern.Shape { return g.shape }

// Len returns the number of cells.
func (g *Grid[T]) Len() int { return len(g.cells) }

// Cells returns the results in axis-major order. The slice is shared.
func (g *Grid[T]) Cells() []T { return g.cells }

// Index maps a coordinate to its flat axis-major position.
// Complexity: O(1).
func (g *Grid[T]) Index(c Coord) (int, error) {
	idx := 0
	for ax, i := range c {
		if i < 0 || i >= g.shape[ax] {
			return 0, fmt.Errorf("grid: %s position %d (len %d): %w",
				pattern.Axis(ax), i, g.shape[ax], pattern.ErrOutOfRange)
		}
		idx = idx*g.shape[ax] + i
	}
	return idx, nil
}

// Coord converts a flat axis-major position back to a coordinate.
// Complexity: O(1).
func (g *Grid[T]) Coord(idx int) Coord {
	return coordOf(g.shape, idx)
}

func coordOf(shape pattern.Shape, idx int) Coord {
	var c Coord
	for ax := pattern.Rank - 1; ax >= 0; ax-- {
		c[ax] = idx % shape[ax]
		idx /= shape[ax]
	}
	return c
}

// At returns the result stored for cell c.
func (g *Grid[T]) At(c Coord) (T, error) {
	idx, err := g.Index(c)
	if err != nil {
		var zero T
		return zero, err
	}
	return g.cells[idx], nil
}

// Indices returns the source index groups selected for cell c; whole axes
// are reported as nil.
func (g *Grid[T]) Indices(c Coord) ([pattern.Rank][]int, error) {
	if _, err := g.Index(c); err != nil {
		return [pattern.Rank][]int{}, err
	}
	return g.parts.selection(c), nil
}

// selection picks the group of every partitioned axis for c.
func (ps Partitions) selection(c Coord) [pattern.Rank][]int {
	var sel [pattern.Rank][]int
	for ax, p := range ps {
		if p != nil {
			sel[ax] = p[c[ax]]
		}
	}
	return sel
}
