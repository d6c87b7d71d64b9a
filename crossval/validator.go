// SPDX-License-Identifier: MIT

package crossval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mortonne/eeg-analysis-toolbox/grid"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/resample"
	"github.com/mortonne/eeg-analysis-toolbox/selector"
)

// Params carries free-form options for train and metric functions, usually
// decoded from YAML.
type Params map[string]any

// Float returns p[key] as a float64, or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("crossval: option %q: %T is not a number: %w", key, raw, pattern.ErrConfig)
}

// TrainFunc fits a model on the rows of X labelled y.
type TrainFunc func(X *mat.Dense, y []float64, opts Params) (any, error)

// TestFunc predicts one value per row of X.
type TestFunc func(model any, X *mat.Dense) ([]float64, error)

// MetricFunc scores predictions against the true labels.
type MetricFunc func(pred, truth []float64, opts Params) (float64, error)

// Metric is a named, configured performance measure.
type Metric struct {
	Name string
	Fn   MetricFunc
	Opts Params
}

// Config holds everything a Validator needs besides the data.
type Config struct {
	Train     TrainFunc
	TrainOpts Params
	Test      TestFunc
	Metrics   []Metric

	// Groups holds one training-group id per observation. When set, each
	// fold is repeated Reps times on a resampled training pool.
	Groups   []int
	Sampling resample.Mode
	Reps     int

	// Seed seeds the resampling source of every Run; 0 draws a time seed.
	Seed int64

	Logger       *zap.Logger
	OnTransition func(Transition)
}

// Validator runs leave-one-fold-out cross-validation. It holds no mutable
// state, so one Validator may serve many grid cells concurrently.
type Validator struct {
	cfg Config
}

// New validates cfg and returns a Validator.
func New(cfg Config) (*Validator, error) {
	if cfg.Train == nil || cfg.Test == nil {
		return nil, fmt.Errorf("crossval: train and test functions are required: %w", pattern.ErrConfig)
	}
	if len(cfg.Metrics) == 0 {
		return nil, fmt.Errorf("crossval: at least one metric is required: %w", pattern.ErrConfig)
	}
	seen := make(map[string]bool, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		if m.Fn == nil || m.Name == "" || seen[m.Name] {
			return nil, fmt.Errorf("crossval: metric %q is unnamed, duplicated or has no function: %w", m.Name, pattern.ErrConfig)
		}
		seen[m.Name] = true
	}
	if cfg.Reps < 0 {
		return nil, fmt.Errorf("crossval: reps %d: %w", cfg.Reps, pattern.ErrConfig)
	}
	if cfg.Reps == 0 {
		cfg.Reps = 1
	}
	if cfg.Groups == nil && cfg.Sampling != resample.None {
		return nil, fmt.Errorf("crossval: %s sampling needs training groups: %w", cfg.Sampling, pattern.ErrConfig)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Validator{cfg: cfg}, nil
}

// Record is the outcome of one (fold, repetition) iteration. Train and Test
// hold observation indices.
type Record struct {
	Fold        int
	Rep         int
	Train       []int
	Test        []int
	Model       any
	Predictions []float64
	Perf        map[string]float64
}

// Inputs are the per-observation vectors shared by every grid cell.
// TestTargets, when non-nil, replaces Targets for scoring.
type Inputs struct {
	Folds       []int
	Targets     []float64
	TestTargets []float64
}

// Worker adapts Run to grid.Run: the sub-array is flattened to an
// observations × features matrix and failures are tagged with the cell.
func (v *Validator) Worker(ctx context.Context, sub *pattern.Array, in Inputs, c grid.Coord) ([]Record, error) {
	recs, err := v.Run(ctx, sub.Matrix(), in.Folds, in.Targets, in.TestTargets)
	var te *TrainingError
	if errors.As(err, &te) {
		te.Cell = c
	}
	return recs, err
}

// Run cross-validates X (observations × features). The result is ordered by
// fold, then repetition, and has folds × reps records (reps is 1 without
// training groups).
func (v *Validator) Run(ctx context.Context, X *mat.Dense, folds []int, targets, testTargets []float64) ([]Record, error) {
	n, _ := X.Dims()
	if len(folds) != n || len(targets) != n || (testTargets != nil && len(testTargets) != n) {
		return nil, fmt.Errorf("crossval: %d observations, %d fold ids, %d targets, %d test targets: %w",
			n, len(folds), len(targets), len(testTargets), pattern.ErrShape)
	}
	if v.cfg.Groups != nil && len(v.cfg.Groups) != n {
		return nil, fmt.Errorf("crossval: %d observations, %d training groups: %w", n, len(v.cfg.Groups), pattern.ErrShape)
	}
	ids := selector.Distinct(folds)
	if len(ids) < 2 {
		return nil, fmt.Errorf("crossval: need at least two folds, have %d: %w", len(ids), pattern.ErrConfig)
	}
	truth := targets
	if testTargets != nil {
		truth = testTargets
	}

	reps := 1
	if v.cfg.Groups != nil {
		reps = v.cfg.Reps
	}
	seed := v.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	out := make([]Record, 0, len(ids)*reps)
	for _, f := range ids {
		test, pool := split(folds, targets, f)
		for rep := 1; rep <= reps; rep++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			train := pool
			if v.cfg.Groups != nil {
				grp := make([]int, len(pool))
				for k, i := range pool {
					grp[k] = v.cfg.Groups[i]
				}
				var err error
				if train, err = resample.Resample(rng, pool, grp, v.cfg.Sampling); err != nil {
					return nil, fmt.Errorf("crossval: fold %d rep %d: %w", f, rep, err)
				}
			}
			rec, err := v.iterate(X, targets, truth, f, rep, train, test)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}

	return out, nil
}

// split returns the held-out rows of fold f and the training pool. Rows with
// a NaN target never enter the pool.
func split(folds []int, targets []float64, f int) (test, pool []int) {
	for i, id := range folds {
		switch {
		case id == f:
			test = append(test, i)
		case !math.IsNaN(targets[i]):
			pool = append(pool, i)
		}
	}
	return test, pool
}

func (v *Validator) iterate(X *mat.Dense, targets, truth []float64, fold, rep int, train, test []int) (Record, error) {
	it := &iteration{fold: fold, rep: rep, hook: v.cfg.OnTransition}

	it.advance(Training)
	if len(train) == 0 {
		return Record{}, it.fail(fmt.Errorf("empty training pool: %w", pattern.ErrShape))
	}
	model, err := v.cfg.Train(rows(X, train), pick(targets, train), v.cfg.TrainOpts)
	if err != nil {
		return Record{}, it.fail(err)
	}

	it.advance(Testing)
	pred, err := v.cfg.Test(model, rows(X, test))
	if err != nil {
		return Record{}, it.fail(err)
	}
	if len(pred) != len(test) {
		return Record{}, it.fail(fmt.Errorf("%d predictions for %d test rows", len(pred), len(test)))
	}
	want := pick(truth, test)
	perf := make(map[string]float64, len(v.cfg.Metrics))
	for _, m := range v.cfg.Metrics {
		score, err := m.Fn(pred, want, m.Opts)
		if err != nil {
			return Record{}, it.fail(fmt.Errorf("metric %s: %w", m.Name, err))
		}
		perf[m.Name] = score
	}

	it.advance(Aggregating)
	rec := Record{
		Fold:        fold,
		Rep:         rep,
		Train:       train,
		Test:        test,
		Model:       model,
		Predictions: pred,
		Perf:        perf,
	}
	it.advance(Done)
	v.cfg.Logger.Debug("fold done",
		zap.Int("fold", fold),
		zap.Int("rep", rep),
		zap.Int("train", len(train)),
		zap.Int("test", len(test)),
		zap.Any("perf", perf))

	return rec, nil
}

// rows copies the selected rows of X into a new matrix.
func rows(X *mat.Dense, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for k, i := range idx {
		out.SetRow(k, X.RawRowView(i))
	}
	return out
}

func pick(vals []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for k, i := range idx {
		out[k] = vals[i]
	}
	return out
}
