package grid_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mortonne/eeg-analysis-toolbox/grid"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// seqArray returns an array whose value encodes its position:
// o*1000 + c*100 + t*10 + f.
func seqArray(t *testing.T, shape pattern.Shape) *pattern.Array {
	t.Helper()
	a, err := pattern.NewArray(shape)
	require.NoError(t, err)
	for o := 0; o < shape[0]; o++ {
		for c := 0; c < shape[1]; c++ {
			for tt := 0; tt < shape[2]; tt++ {
				for f := 0; f < shape[3]; f++ {
					require.NoError(t, a.Set(o, c, tt, f, float64(o*1000+c*100+tt*10+f)))
				}
			}
		}
	}
	return a
}

type cellInfo struct {
	shape pattern.Shape
	first float64
	coord grid.Coord
	tag   string
}

func describe(_ context.Context, sub *pattern.Array, tag string, c grid.Coord) (cellInfo, error) {
	return cellInfo{shape: sub.Shape(), first: sub.Data()[0], coord: c, tag: tag}, nil
}

func p3Partitions() grid.Partitions {
	return grid.Partitions{
		pattern.Obs:  {{0, 1, 2}, {3, 4, 5, 6}, {7, 8, 9}},
		pattern.Time: {{0, 1, 2}, {3, 4, 5}},
	}
}

func TestRunShapeAndCellMapping(t *testing.T) {
	arr := seqArray(t, pattern.Shape{10, 4, 6, 2})
	g, err := grid.Run(context.Background(), arr, p3Partitions(), describe, "args")
	require.NoError(t, err)
	require.Equal(t, pattern.Shape{3, 1, 2, 1}, g.Shape())
	require.Equal(t, 6, g.Len())

	// cell (2,1,1,1) in 1-based terms
	c := grid.Coord{1, 0, 0, 0}
	info, err := g.At(c)
	require.NoError(t, err)
	require.Equal(t, pattern.Shape{4, 4, 3, 2}, info.shape)
	require.Equal(t, 3000.0, info.first)
	require.Equal(t, c, info.coord)
	require.Equal(t, "args", info.tag)

	idx, err := g.Indices(c)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4, 5, 6}, idx[pattern.Obs])
	require.Nil(t, idx[pattern.Chan])
	require.Equal(t, []int{0, 1, 2}, idx[pattern.Time])
	require.Nil(t, idx[pattern.Freq])
}

func TestGridCoordinateRoundTrip(t *testing.T) {
	arr := seqArray(t, pattern.Shape{10, 4, 6, 2})
	g, err := grid.Run(context.Background(), arr, p3Partitions(), describe, "")
	require.NoError(t, err)
	for i, cell := range g.Cells() {
		c := g.Coord(i)
		require.Equal(t, cell.coord, c)
		back, err := g.Index(c)
		require.NoError(t, err)
		require.Equal(t, i, back)
	}
	// axis-major: time varies faster than events
	require.Equal(t, grid.Coord{0, 0, 1, 0}, g.Coord(1))
	require.Equal(t, grid.Coord{1, 0, 0, 0}, g.Coord(2))

	_, err = g.At(grid.Coord{3, 0, 0, 0})
	require.ErrorIs(t, err, pattern.ErrOutOfRange)
}

func TestRunValidatesBeforeCalling(t *testing.T) {
	arr := seqArray(t, pattern.Shape{2, 2, 2, 2})
	var calls atomic.Int32
	count := func(_ context.Context, _ *pattern.Array, _ struct{}, _ grid.Coord) (int, error) {
		calls.Add(1)
		return 0, nil
	}

	tests := []struct {
		name  string
		parts grid.Partitions
		want  error
	}{
		{"out of range", grid.Partitions{pattern.Chan: {{0, 2}}}, pattern.ErrOutOfRange},
		{"empty group", grid.Partitions{pattern.Time: {{0}, {}}}, pattern.ErrShape},
		{"no groups", grid.Partitions{pattern.Freq: {}}, pattern.ErrConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grid.Run(context.Background(), arr, tc.parts, count, struct{}{})
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Zero(t, calls.Load())

	_, err := grid.Run[int, struct{}](context.Background(), arr, grid.Partitions{}, nil, struct{}{})
	require.ErrorIs(t, err, grid.ErrNilWorker)
}

var errBoom = errors.New("boom")

func TestRunFailFast(t *testing.T) {
	arr := seqArray(t, pattern.Shape{4, 1, 3, 1})
	parts := grid.Partitions{pattern.Time: {{0}, {1}, {2}}}
	failOn := grid.Coord{0, 0, 1, 0}
	worker := func(_ context.Context, _ *pattern.Array, _ int, c grid.Coord) (int, error) {
		if c == failOn {
			return 0, errBoom
		}
		return 1, nil
	}

	for _, opts := range [][]grid.Option{nil, {grid.WithWorkers(3)}} {
		g, err := grid.Run(context.Background(), arr, parts, worker, 0, opts...)
		require.Nil(t, g)
		require.ErrorIs(t, err, errBoom)
		var cellErr *grid.CellError
		require.ErrorAs(t, err, &cellErr)
		require.Equal(t, failOn, cellErr.Coord)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	arr := seqArray(t, pattern.Shape{10, 4, 6, 2})
	parts := grid.Partitions{
		pattern.Obs:  {{0, 1}, {2, 3}, {4, 5, 6, 7, 8, 9}},
		pattern.Chan: {{0}, {1, 2, 3}},
		pattern.Freq: {{0}, {1}},
	}
	mean := func(_ context.Context, sub *pattern.Array, scale float64, _ grid.Coord) (float64, error) {
		s := 0.0
		for _, v := range sub.Data() {
			s += v
		}
		return scale * s / float64(sub.Shape().Size()), nil
	}

	seq, err := grid.Run(context.Background(), arr, parts, mean, 1.0)
	require.NoError(t, err)
	par, err := grid.Run(context.Background(), arr, parts, mean, 1.0, grid.WithWorkers(4))
	require.NoError(t, err)
	require.Equal(t, seq.Cells(), par.Cells())
	require.Equal(t, pattern.Shape{3, 2, 1, 2}, par.Shape())
}

func TestRunCancelled(t *testing.T) {
	arr := seqArray(t, pattern.Shape{2, 1, 1, 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := grid.Run(ctx, arr, grid.Partitions{}, describe, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRequireWholeAxis(t *testing.T) {
	require.NoError(t, grid.RequireWholeAxis(grid.Partitions{pattern.Chan: {{0}}}, pattern.Obs, 3))
	require.NoError(t, grid.RequireWholeAxis(grid.Partitions{pattern.Obs: {{0, 1, 2}}}, pattern.Obs, 3))

	for _, p := range []grid.Partition{{{0}}, {{2, 1, 0}}, {{0, 1}, {2}}} {
		err := grid.RequireWholeAxis(grid.Partitions{pattern.Obs: p}, pattern.Obs, 3)
		require.ErrorIs(t, err, pattern.ErrConfig, "partition %v", p)
		require.Contains(t, err.Error(), "events")
	}
}

func TestWithWorkersPanicsOnZero(t *testing.T) {
	require.Panics(t, func() { grid.WithWorkers(0) })
}
