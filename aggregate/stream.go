// SPDX-License-Identifier: MIT
// Package: aggregate
//
// stream.go — incremental reduction along the observations axis.
//
// Observation counts can be large enough that the unbinned array should never
// be resident. A BinStream walks the observation bins one at a time, pulling
// each member observation from an ObsSource and folding it into a running
// accumulator; only one source observation and one accumulator are alive at
// any moment.
//
// A BinStream is finite and not restartable: once Next returns false it keeps
// returning false.

package aggregate

import (
	"context"
	"fmt"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// ObsSource yields observations of an unbinned array on demand. It is the
// boundary to upstream signal extraction.
type ObsSource interface {
	// Shape returns the full (unbinned) array shape.
	Shape() pattern.Shape
	// Obs returns observation i as a (1, C, T, F) array.
	Obs(ctx context.Context, i int) (*pattern.Array, error)
}

// ArraySource serves observations from an in-memory array.
type ArraySource struct {
	A *pattern.Array
}

// Shape implements ObsSource.
func (s ArraySource) Shape() pattern.Shape { return s.A.Shape() }

// Obs implements ObsSource.
func (s ArraySource) Obs(_ context.Context, i int) (*pattern.Array, error) { return s.A.Obs(i) }

// BinStream produces one reduced (1, C, T, F) slice per observation bin.
type BinStream struct {
	src   ObsSource
	bins  [][]int
	shape pattern.Shape // (1, C, T, F)
	acc   *accumulator
	pos   int
	cur   *pattern.Array
	err   error
	done  bool
}

// NewBinStream validates bins against the source and prepares the stream.
func NewBinStream(src ObsSource, bins [][]int) (*BinStream, error) {
	full := src.Shape()
	for b, g := range bins {
		for _, i := range g {
			if i < 0 || i >= full[pattern.Obs] {
				return nil, fmt.Errorf("aggregate: events bin %d: %w: index %d (len %d)",
					b, pattern.ErrOutOfRange, i, full[pattern.Obs])
			}
		}
	}
	shape := full
	shape[pattern.Obs] = 1

	return &BinStream{
		src:   src,
		bins:  bins,
		shape: shape,
		acc:   newAccumulator(shape.Size()),
		pos:   -1,
	}, nil
}

// Len returns the number of bins the stream will produce.
func (s *BinStream) Len() int { return len(s.bins) }

// Next reduces the next bin. It returns false when the bins are exhausted, on
// the first error (see Err), or when ctx is done.
func (s *BinStream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	s.pos++
	if s.pos >= len(s.bins) {
		s.finish(nil)
		return false
	}

	s.acc.reset()
	for _, i := range s.bins[s.pos] {
		if err := ctx.Err(); err != nil {
			s.finish(err)
			return false
		}
		obs, err := s.src.Obs(ctx, i)
		if err != nil {
			s.finish(fmt.Errorf("aggregate: observation %d: %w", i, err))
			return false
		}
		if obs.Shape() != s.shape {
			s.finish(fmt.Errorf("aggregate: observation %d: %w: shape %v, want %v",
				i, pattern.ErrShape, obs.Shape(), s.shape))
			return false
		}
		s.acc.add(obs.Data())
	}

	out, err := pattern.NewArray(s.shape)
	if err != nil {
		s.finish(err)
		return false
	}
	s.acc.mean(out.Data())
	s.cur = out

	return true
}

func (s *BinStream) finish(err error) {
	s.done, s.err, s.cur = true, err, nil
}

// Bin returns the index of the bin produced by the last successful Next.
func (s *BinStream) Bin() int { return s.pos }

// Slice returns the reduced slice produced by the last successful Next.
func (s *BinStream) Slice() *pattern.Array { return s.cur }

// Err returns the error that stopped the stream, if any.
func (s *BinStream) Err() error { return s.err }
