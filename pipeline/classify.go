// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mortonne/eeg-analysis-toolbox/artifact"
	"github.com/mortonne/eeg-analysis-toolbox/binning"
	"github.com/mortonne/eeg-analysis-toolbox/crossval"
	"github.com/mortonne/eeg-analysis-toolbox/grid"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/results"
	"github.com/mortonne/eeg-analysis-toolbox/selector"
)

// ClassifyRequest describes one classification run over a pattern.
type ClassifyRequest struct {
	Name    string // stat name
	Pattern *pattern.Pattern

	Regressor     []string // event fields defining the targets
	TestRegressor []string // optional alternate targets used for scoring
	Selector      []string // event fields defining the folds
	TrainGroups   []string // optional event fields for balanced resampling

	// Iter partitions the channel, time and frequency axes into grid cells.
	// The events entry must be nil.
	Iter binning.Specs

	// Validator holds the train/test/metric functions and sampling setup.
	// Its Groups field is filled from TrainGroups.
	Validator crossval.Config

	Params map[string]string
}

// Classify cross-validates every grid cell of the pattern and saves the
// assembled Stat. The returned Stat is nil when the operation was skipped.
func (p *Pipeline) Classify(ctx context.Context, req ClassifyRequest) (*results.Stat, Outcome, error) {
	pat := req.Pattern
	if pat == nil {
		return nil, Outcome{}, fmt.Errorf("pipeline: classify %q: no pattern: %w", req.Name, pattern.ErrConfig)
	}
	path := p.store.Path(artifact.KindStat, req.Name, pat.Source)
	out := Outcome{Path: path}
	fail := func(err error) (*results.Stat, Outcome, error) {
		return nil, out, fmt.Errorf("pipeline: stat %s: %w", path, err)
	}

	skipped, err := p.skip(artifact.KindStat, req.Name, pat.Source)
	if err != nil {
		return fail(err)
	}
	if skipped {
		out.Skipped = true
		return nil, out, nil
	}

	// Stage 1 (Validate): everything below fails before any cell runs.
	if len(req.Regressor) == 0 {
		return fail(fmt.Errorf("regressor not specified: %w", pattern.ErrConfig))
	}
	if len(req.Selector) == 0 {
		return fail(fmt.Errorf("selector not specified: %w", pattern.ErrConfig))
	}
	if err := pat.Validate(); err != nil {
		return fail(err)
	}
	// unpartitioned axes become one summarised cell so Stat dims match the grid
	iter := req.Iter
	all := binning.All()
	for _, ax := range []pattern.Axis{pattern.Chan, pattern.Time, pattern.Freq} {
		if iter[ax] == nil {
			iter[ax] = &all
		}
	}
	plan, err := binning.Resolve(pat.Dims, iter, p.binOpts...)
	if err != nil {
		return fail(err)
	}
	parts := grid.FromGroups(plan.Groups)
	if err := grid.RequireWholeAxis(parts, pattern.Obs, pat.Array.Len(pattern.Obs)); err != nil {
		return fail(err)
	}

	events := pat.Dims.Events
	labels, err := selector.Targets(events, req.Regressor...)
	if err != nil {
		return fail(err)
	}
	in := crossval.Inputs{Targets: labels.Values}
	if len(req.TestRegressor) > 0 {
		testLabels, err := selector.TargetsWithLevels(events, labels.Levels, req.TestRegressor...)
		if err != nil {
			return fail(err)
		}
		in.TestTargets = testLabels.Values
	}
	if in.Folds, err = selector.Folds(events, req.Selector...); err != nil {
		return fail(err)
	}
	cfg := req.Validator
	if len(req.TrainGroups) > 0 {
		if cfg.Groups, err = selector.Groups(events, req.TrainGroups...); err != nil {
			return fail(err)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = p.logger
	}
	v, err := crossval.New(cfg)
	if err != nil {
		return fail(err)
	}

	// Stage 2 (Iterate)
	p.logger.Info("classifying",
		zap.String("pattern", pat.Name),
		zap.String("source", pat.Source),
		zap.Ints("grid", parts.Shape().Ints()),
		zap.Int("folds", len(selector.Distinct(in.Folds))))
	g, err := grid.Run(ctx, pat.Array, parts, v.Worker, in,
		grid.WithWorkers(p.workers), grid.WithLogger(p.logger))
	if err != nil {
		return fail(err)
	}

	// Stage 3 (Assemble and persist, once)
	st, err := results.Assemble(g)
	if err != nil {
		return fail(err)
	}
	st.Name, st.Source = req.Name, pat.Source
	st.Dims = plan.Dims
	st.Dims.Events = nil
	st.Params = map[string]string{
		"pattern":   pat.Name,
		"regressor": strings.Join(req.Regressor, ","),
		"selector":  strings.Join(req.Selector, ","),
		"sampling":  cfg.Sampling.String(),
		"reps":      strconv.Itoa(max(cfg.Reps, 1)),
		"run_id":    st.RunID,
	}
	if len(req.TestRegressor) > 0 {
		st.Params["test_regressor"] = strings.Join(req.TestRegressor, ",")
	}
	if len(req.TrainGroups) > 0 {
		st.Params["train_groups"] = strings.Join(req.TrainGroups, ",")
	}
	if labels.Levels != nil {
		st.Params["levels"] = strings.Join(labels.Levels, ",")
	}
	for k, v := range req.Iter.Params() {
		st.Params["iter"+strings.TrimPrefix(k, "bins")] = v
	}
	maps.Copy(st.Params, req.Params)

	if _, err := p.store.Save(ctx, artifact.KindStat, st.Name, st.Source, st); err != nil {
		return fail(err)
	}
	return st, out, nil
}
