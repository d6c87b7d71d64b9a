// SPDX-License-Identifier: MIT

package grid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Worker computes the result of one cell. sub is the selected sub-array,
// args is the value passed to Run, unchanged, and c is the cell coordinate.
type Worker[T, A any] func(ctx context.Context, sub *pattern.Array, args A, c Coord) (T, error)

// Option configures Run.
type Option func(*options)

type options struct {
	workers int
	logger  *zap.Logger
}

// WithWorkers runs up to n cells concurrently. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("grid: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *options) { o.workers = n }
}

// WithLogger attaches a logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("grid: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

// Run evaluates worker on every cell of the partition grid over arr.
//
// Stage 1 (Validate): partitions are checked against arr before any worker
// is called. Stage 2 (Iterate): cells run in axis-major order, sequentially
// by default. Stage 3 (Collect): the grid is returned only if every cell
// succeeded.
//
// Complexity: O(cells · (selection + worker)).
func Run[T, A any](ctx context.Context, arr *pattern.Array, parts Partitions, worker Worker[T, A], args A, opts ...Option) (*Grid[T], error) {
	o := options{workers: 1, logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if worker == nil {
		return nil, ErrNilWorker
	}
	if err := parts.validate(arr.Shape()); err != nil {
		return nil, err
	}

	g := &Grid[T]{shape: parts.Shape(), parts: parts}
	g.cells = make([]T, g.shape.Size())
	o.logger.Debug("grid run",
		zap.Ints("grid", g.shape.Ints()),
		zap.Int("cells", len(g.cells)),
		zap.Int("workers", o.workers))

	cell := func(ctx context.Context, idx int) error {
		c := coordOf(g.shape, idx)
		sub, err := arr.Select(parts.selection(c))
		if err != nil {
			return &CellError{Coord: c, Err: err}
		}
		res, err := worker(ctx, sub, args, c)
		if err != nil {
			return &CellError{Coord: c, Err: err}
		}
		g.cells[idx] = res
		return nil
	}

	if o.workers == 1 {
		for idx := range g.cells {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := cell(ctx, idx); err != nil {
				return nil, err
			}
		}
		return g, nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(o.workers)
	for idx := range g.cells {
		if ectx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			return cell(ectx, idx)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	// a cancelled parent may stop the loop before any cell fails
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return g, nil
}
