// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/aggregate"
	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/binning"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOverwrite replaces existing artifacts instead of skipping them.
func WithOverwrite(overwrite bool) Option {
	return func(p *Pipeline) { p.overwrite = overwrite }
}

// WithWorkers runs up to n grid cells concurrently. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("pipeline: WithWorkers(%d)", n))
	}
	return func(p *Pipeline) { p.workers = n }
}

// WithLogger attaches a logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("pipeline: WithLogger(nil)")
	}
	return func(p *Pipeline) { p.logger = l }
}

// WithBinningOptions forwards options to every bin resolution.
func WithBinningOptions(opts ...binning.Option) Option {
	return func(p *Pipeline) { p.binOpts = append(p.binOpts, opts...) }
}

// Pipeline runs operations against one artifact store.
type Pipeline struct {
	store     *artifact.Store
	overwrite bool
	workers   int
	logger    *zap.Logger
	binOpts   []binning.Option
}

// New returns a pipeline saving to store.
func New(store *artifact.Store, opts ...Option) *Pipeline {
	p := &Pipeline{store: store, workers: 1, logger: zap.NewNop()}
	for _, fn := range opts {
		fn(p)
	}
	return p
}

// Outcome reports what an operation did.
type Outcome struct {
	Path    string
	Skipped bool // target existed and overwrite is disabled
}

// skip reports whether the artifact exists and must be left alone.
func (p *Pipeline) skip(kind artifact.Kind, name, source string) (bool, error) {
	if p.overwrite {
		return false, nil
	}
	exists, err := p.store.Exists(kind, name, source)
	if err != nil || !exists {
		return false, err
	}
	p.logger.Info("artifact exists, skipping",
		zap.String("kind", string(kind)),
		zap.String("path", p.store.Path(kind, name, source)))
	return true, nil
}

// PatternRequest describes a pattern to create. Exactly one of From and
// Source must be set: From rebins an existing pattern, Source streams raw
// observations described by Dims.
type PatternRequest struct {
	Name     string
	SourceID string
	From     *pattern.Pattern
	Source   aggregate.ObsSource
	Dims     pattern.Dims
	Specs    binning.Specs
	Params   map[string]string
}

// CreatePattern bins and saves a pattern. The returned pattern is nil when
// the operation was skipped.
func (p *Pipeline) CreatePattern(ctx context.Context, req PatternRequest) (*pattern.Pattern, Outcome, error) {
	path := p.store.Path(artifact.KindPattern, req.Name, req.SourceID)
	out := Outcome{Path: path}
	fail := func(err error) (*pattern.Pattern, Outcome, error) {
		return nil, out, fmt.Errorf("pipeline: pattern %s: %w", path, err)
	}
	if (req.From == nil) == (req.Source == nil) {
		return fail(fmt.Errorf("need exactly one of an existing pattern or an observation source: %w", pattern.ErrConfig))
	}

	skipped, err := p.skip(artifact.KindPattern, req.Name, req.SourceID)
	if err != nil {
		return fail(err)
	}
	if skipped {
		out.Skipped = true
		return nil, out, nil
	}

	aggOpts := []aggregate.Option{aggregate.WithLogger(p.logger), aggregate.WithBinningOptions(p.binOpts...)}
	var pat *pattern.Pattern
	if req.From != nil {
		pat, err = aggregate.BinPattern(req.From, req.Specs, aggOpts...)
	} else {
		pat, err = aggregate.Build(ctx, req.Source, req.Dims, req.Specs, aggOpts...)
	}
	if err != nil {
		return fail(err)
	}
	pat.Name, pat.Source = req.Name, req.SourceID
	maps.Copy(pat.Params, req.Params)
	if req.From != nil {
		pat.Params["from"] = req.From.Name
	}

	if _, err := p.store.Save(ctx, artifact.KindPattern, pat.Name, pat.Source, pat); err != nil {
		return fail(err)
	}
	return pat, out, nil
}

// LoadPattern reads a saved pattern.
func (p *Pipeline) LoadPattern(name, source string) (*pattern.Pattern, error) {
	var pat pattern.Pattern
	if err := p.store.Load(artifact.KindPattern, name, source, &pat); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &pat, nil
}
