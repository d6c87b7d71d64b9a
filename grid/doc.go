// SPDX-License-Identifier: MIT

// Package grid iterates a worker over the Cartesian product of per-axis
// partitions of a pattern array.
//
// A Partition is either nil (the whole axis as a single group) or an explicit
// list of index groups. Run visits every combination of groups in axis-major
// nested order (the frequency axis varies fastest), hands the worker the
// selected sub-array together with a fixed argument value, and stores the
// result in a Grid whose shape is the number of groups per axis.
//
// Cells are independent: they read shared inputs only and write disjoint
// slots, so WithWorkers may run them concurrently. Any worker failure cancels
// the run and no partial grid is returned; the error is a *CellError naming
// the failing cell.
//
// The mapping between a cell coordinate and its source indices is exact:
// Grid.Indices(c) returns the groups selected for cell c, and Grid.Coord /
// Grid.Index convert between coordinates and flat cell positions.
package grid
