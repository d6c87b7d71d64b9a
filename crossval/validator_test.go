package crossval_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/mortonne/eeg-analysis-toolbox/crossval"
	"github.com/mortonne/eeg-analysis-toolbox/grid"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/resample"
)

// scenario: categories [A,A,B,B,A,B] coded [1,1,2,2,1,2], sessions as folds.
// Class A rows sit near the origin, class B rows near (10, 10).
func scenario() (*mat.Dense, []int, []float64) {
	X := mat.NewDense(6, 2, []float64{
		0, 1,
		1, 0,
		10, 9,
		9, 10,
		0, 0,
		10, 10,
	})
	return X, []int{1, 1, 1, 2, 2, 2}, []float64{1, 1, 2, 2, 1, 2}
}

func centroidConfig() crossval.Config {
	return crossval.Config{
		Train:   crossval.TrainCentroid,
		Test:    crossval.PredictCentroid,
		Metrics: []crossval.Metric{{Name: "accuracy", Fn: crossval.Accuracy}},
	}
}

func TestScenarioLeaveOneFoldOut(t *testing.T) {
	X, folds, targets := scenario()
	v, err := crossval.New(centroidConfig())
	require.NoError(t, err)

	recs, err := v.Run(context.Background(), X, folds, targets, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	require.Equal(t, 1, recs[0].Fold)
	require.Equal(t, []int{0, 1, 2}, recs[0].Test)
	require.Equal(t, []int{3, 4, 5}, recs[0].Train)
	require.Equal(t, 2, recs[1].Fold)
	require.Equal(t, []int{3, 4, 5}, recs[1].Test)
	require.Equal(t, []int{0, 1, 2}, recs[1].Train)

	var tested []int
	for _, r := range recs {
		require.Equal(t, 1, r.Rep)
		require.Len(t, r.Predictions, len(r.Test))
		require.Equal(t, 1.0, r.Perf["accuracy"])
		tested = append(tested, r.Test...)
	}
	slices.Sort(tested)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, tested)
}

func TestEveryObservationPredictedOnce(t *testing.T) {
	const n, k = 23, 4
	data := make([]float64, n)
	folds := make([]int, n)
	targets := make([]float64, n)
	for i := range data {
		data[i] = float64(i % 2)
		folds[i] = i%k + 1
		targets[i] = float64(i%2 + 1)
	}
	v, err := crossval.New(centroidConfig())
	require.NoError(t, err)

	recs, err := v.Run(context.Background(), mat.NewDense(n, 1, data), folds, targets, nil)
	require.NoError(t, err)
	require.Len(t, recs, k)

	seen := make(map[int]int)
	total := 0
	for _, r := range recs {
		total += len(r.Predictions)
		for _, i := range r.Test {
			seen[i]++
		}
	}
	require.Equal(t, n, total)
	require.Len(t, seen, n)
	for i, c := range seen {
		require.Equal(t, 1, c, "observation %d", i)
	}
}

func TestRepsWithBalancedGroups(t *testing.T) {
	X, folds, targets := scenario()
	cfg := centroidConfig()
	cfg.Groups = []int{1, 1, 2, 2, 1, 2}
	cfg.Sampling = resample.Under
	cfg.Reps = 3
	cfg.Seed = 11
	v, err := crossval.New(cfg)
	require.NoError(t, err)

	recs, err := v.Run(context.Background(), X, folds, targets, nil)
	require.NoError(t, err)
	require.Len(t, recs, 6)
	for i, r := range recs {
		require.Equal(t, i/3+1, r.Fold)
		require.Equal(t, i%3+1, r.Rep)
		// fold 1 pool {3,4,5} has groups {2,1,2}: one draw per group
		require.Len(t, r.Train, 2)
	}
}

func TestRepsIgnoredWithoutGroups(t *testing.T) {
	X, folds, targets := scenario()
	cfg := centroidConfig()
	cfg.Reps = 5
	v, err := crossval.New(cfg)
	require.NoError(t, err)
	recs, err := v.Run(context.Background(), X, folds, targets, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestTestTargetsUsedForScoring(t *testing.T) {
	X, folds, targets := scenario()
	flipped := make([]float64, len(targets))
	for i, y := range targets {
		flipped[i] = 3 - y
	}
	v, err := crossval.New(centroidConfig())
	require.NoError(t, err)
	recs, err := v.Run(context.Background(), X, folds, targets, flipped)
	require.NoError(t, err)
	for _, r := range recs {
		require.Equal(t, 0.0, r.Perf["accuracy"])
	}
}

var errDiverged = errors.New("diverged")

func TestTrainingFailureCarriesLocation(t *testing.T) {
	X, folds, targets := scenario()
	cfg := centroidConfig()
	cfg.Train = func(X *mat.Dense, y []float64, opts crossval.Params) (any, error) {
		if r, _ := X.Dims(); r == 3 && X.At(0, 0) == 0 {
			return nil, errDiverged // second fold trains on rows 0..2
		}
		return crossval.TrainCentroid(X, y, opts)
	}
	var transitions []crossval.Transition
	cfg.OnTransition = func(tr crossval.Transition) { transitions = append(transitions, tr) }
	v, err := crossval.New(cfg)
	require.NoError(t, err)

	recs, err := v.Run(context.Background(), X, folds, targets, nil)
	require.Nil(t, recs)
	require.ErrorIs(t, err, crossval.ErrTraining)
	require.ErrorIs(t, err, errDiverged)
	var te *crossval.TrainingError
	require.ErrorAs(t, err, &te)
	require.Equal(t, 2, te.Fold)
	require.Equal(t, 1, te.Rep)
	require.Equal(t, crossval.Training, te.Stage)

	last := transitions[len(transitions)-1]
	require.Equal(t, crossval.Transition{Fold: 2, Rep: 1, From: crossval.Training, To: crossval.Failed}, last)
	// the first fold went all the way
	var first []crossval.State
	for _, tr := range transitions[:4] {
		first = append(first, tr.To)
	}
	require.Equal(t, []crossval.State{crossval.Training, crossval.Testing, crossval.Aggregating, crossval.Done}, first)
}

func TestWorkerTagsCell(t *testing.T) {
	X, folds, targets := scenario()
	arr, err := pattern.NewArrayFrom(pattern.Shape{6, 1, 2, 1}, X.RawMatrix().Data)
	require.NoError(t, err)

	cfg := centroidConfig()
	cfg.Test = func(any, *mat.Dense) ([]float64, error) { return nil, errDiverged }
	v, err := crossval.New(cfg)
	require.NoError(t, err)

	parts := grid.Partitions{pattern.Time: {{0}, {1}}}
	_, err = grid.Run(context.Background(), arr, parts, v.Worker, crossval.Inputs{Folds: folds, Targets: targets})
	var te *crossval.TrainingError
	require.ErrorAs(t, err, &te)
	require.Equal(t, crossval.Testing, te.Stage)
	require.Equal(t, grid.Coord{0, 0, 0, 0}, te.Cell)
}

func TestNewAndRunValidation(t *testing.T) {
	_, err := crossval.New(crossval.Config{})
	require.ErrorIs(t, err, pattern.ErrConfig)

	cfg := centroidConfig()
	cfg.Sampling = resample.Over
	_, err = crossval.New(cfg)
	require.ErrorIs(t, err, pattern.ErrConfig)

	cfg = centroidConfig()
	cfg.Metrics = append(cfg.Metrics, cfg.Metrics[0])
	_, err = crossval.New(cfg)
	require.ErrorIs(t, err, pattern.ErrConfig)

	v, err := crossval.New(centroidConfig())
	require.NoError(t, err)
	X, folds, targets := scenario()
	_, err = v.Run(context.Background(), X, folds[:5], targets, nil)
	require.ErrorIs(t, err, pattern.ErrShape)
	_, err = v.Run(context.Background(), X, []int{1, 1, 1, 1, 1, 1}, targets, nil)
	require.ErrorIs(t, err, pattern.ErrConfig)
}
