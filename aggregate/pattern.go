// SPDX-License-Identifier: MIT

package aggregate

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/binning"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Option customises BinPattern and Build.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	binOpts []binning.Option
}

// WithLogger attaches a logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("aggregate: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

// WithBinningOptions forwards options to the binning resolver.
func WithBinningOptions(opts ...binning.Option) Option {
	return func(o *options) { o.binOpts = append(o.binOpts, opts...) }
}

func gatherOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}

// BinPattern returns a new pattern whose axes are reduced according to specs.
// The input pattern is left untouched. Every spec is resolved before any
// array data is read.
func BinPattern(p *pattern.Pattern, specs binning.Specs, opts ...Option) (*pattern.Pattern, error) {
	o := gatherOptions(opts)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("aggregate: pattern %q: %w", p.Name, err)
	}
	plan, err := binning.Resolve(p.Dims, specs, o.binOpts...)
	if err != nil {
		return nil, fmt.Errorf("aggregate: pattern %q: %w", p.Name, err)
	}

	arr, err := Reduce(p.Array, Groups(plan.Groups))
	if err != nil {
		return nil, fmt.Errorf("aggregate: pattern %q: %w", p.Name, err)
	}
	out := &pattern.Pattern{
		Name:   p.Name,
		Source: p.Source,
		Array:  arr,
		Dims:   plan.Dims,
		Params: mergeParams(p.Params, specs.Params()),
	}
	o.logger.Debug("binned pattern",
		zap.String("pattern", p.Name),
		zap.String("source", p.Source),
		zap.Ints("from", p.Array.Shape().Ints()),
		zap.Ints("to", arr.Shape().Ints()))

	return out, out.Validate()
}

// Build constructs a binned pattern from an unbinned source without holding
// the unbinned array: observations are reduced through a BinStream, while the
// channel, time and frequency axes are reduced eagerly on each emitted slice.
// An events spec of nil keeps one bin per observation.
func Build(ctx context.Context, src ObsSource, dims pattern.Dims, specs binning.Specs, opts ...Option) (*pattern.Pattern, error) {
	o := gatherOptions(opts)
	if got, want := src.Shape(), dims.Shape(); got != want {
		return nil, fmt.Errorf("aggregate: source shape %v, descriptors %v: %w", got, want, pattern.ErrShape)
	}
	plan, err := binning.Resolve(dims, specs, o.binOpts...)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	obsBins := plan.Groups[pattern.Obs]
	if obsBins == nil {
		n := dims.Len(pattern.Obs)
		obsBins = make([][]int, n)
		for i := range obsBins {
			obsBins[i] = []int{i}
		}
	}
	stream, err := NewBinStream(src, obsBins)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	out, err := pattern.NewArray(plan.Shape())
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	rest := Groups(plan.Groups)
	rest[pattern.Obs] = nil
	for stream.Next(ctx) {
		slice, err := Reduce(stream.Slice(), rest)
		if err != nil {
			return nil, fmt.Errorf("aggregate: events bin %d: %w", stream.Bin(), err)
		}
		row, err := out.Obs(stream.Bin())
		if err != nil {
			return nil, fmt.Errorf("aggregate: events bin %d: %w", stream.Bin(), err)
		}
		copy(row.Data(), slice.Data())
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	o.logger.Debug("built pattern",
		zap.Int("events_bins", stream.Len()),
		zap.Ints("shape", out.Shape().Ints()))

	p := &pattern.Pattern{Array: out, Dims: plan.Dims, Params: specs.Params()}

	return p, p.Validate()
}

func mergeParams(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)

	return out
}
