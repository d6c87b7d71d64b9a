// SPDX-License-Identifier: MIT

// Package aggregate reduces pattern arrays by averaging index groups along
// any of the four axes.
//
// The same NaN policy holds on every axis: NaN values are excluded from a
// mean, and a group whose values are all NaN (or a group with no members)
// averages to NaN.
//
// Two entry points are provided:
//
//   - BinPattern reduces an in-memory Pattern eagerly.
//   - Build streams observations from an ObsSource through a BinStream, so
//     the unbinned array is never resident; the channel, time and frequency
//     axes are reduced on each emitted slice.
//
// Every bin spec is resolved (see package binning) before any array data is
// read, so configuration errors never leave partial output behind.
package aggregate
