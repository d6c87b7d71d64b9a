package aggregate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mortonne/eeg-analysis-toolbox/aggregate"
	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

func TestNanMean(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"plain", []float64{1, 2, 3}, 2},
		{"skips NaN", []float64{math.NaN(), 2, 4}, 3},
		{"single", []float64{7}, 7},
		{"NaN at both ends", []float64{math.NaN(), 1, 5, math.NaN()}, 3},
		{"negative", []float64{-2, math.NaN(), 4}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, aggregate.NanMean(tc.in), 1e-12)
		})
	}
	require.True(t, math.IsNaN(aggregate.NanMean([]float64{math.NaN(), math.NaN()})))
	require.True(t, math.IsNaN(aggregate.NanMean(nil)))

	in := []float64{math.NaN(), 2, 4}
	aggregate.NanMean(in)
	require.True(t, math.IsNaN(in[0]), "input left untouched")
	require.Equal(t, []float64{2, 4}, in[1:])
}

// line builds an array of extent 3 on ax and 1 elsewhere holding vals.
func line(t *testing.T, ax pattern.Axis, vals []float64) *pattern.Array {
	t.Helper()
	shape := pattern.Shape{1, 1, 1, 1}
	shape[ax] = len(vals)
	a, err := pattern.NewArrayFrom(shape, vals)
	require.NoError(t, err)

	return a
}

func TestReduceAxisNaNPolicyEveryAxis(t *testing.T) {
	nan := math.NaN()
	for _, ax := range pattern.Axes {
		t.Run(ax.String(), func(t *testing.T) {
			a := line(t, ax, []float64{nan, 2, 4, nan, nan})
			out, err := aggregate.ReduceAxis(a, ax, [][]int{{0, 1, 2}, {3, 4}})
			require.NoError(t, err)
			require.Equal(t, 2, out.Len(ax))
			require.InDelta(t, 3.0, out.Data()[0], 1e-12)
			require.True(t, math.IsNaN(out.Data()[1]))
		})
	}
}

func TestReduceAxisErrors(t *testing.T) {
	a := line(t, pattern.Time, []float64{1, 2, 3})

	_, err := aggregate.ReduceAxis(a, pattern.Time, nil)
	require.ErrorIs(t, err, pattern.ErrShape)

	_, err = aggregate.ReduceAxis(a, pattern.Time, [][]int{{0, 3}})
	require.ErrorIs(t, err, pattern.ErrOutOfRange)

	out, err := aggregate.ReduceAxis(a, pattern.Time, [][]int{{}, {2}})
	require.NoError(t, err)
	require.True(t, math.IsNaN(out.Data()[0]))
	require.Equal(t, 3.0, out.Data()[1])
}

func TestReduceMultipleAxes(t *testing.T) {
	// 2 obs × 2 chan × 2 time × 1 freq, value = 10*o + 2*c + t
	data := make([]float64, 8)
	for o := 0; o < 2; o++ {
		for c := 0; c < 2; c++ {
			for tt := 0; tt < 2; tt++ {
				data[o*4+c*2+tt] = float64(10*o + 2*c + tt)
			}
		}
	}
	a, err := pattern.NewArrayFrom(pattern.Shape{2, 2, 2, 1}, data)
	require.NoError(t, err)

	var g aggregate.Groups
	g[pattern.Chan] = [][]int{{0, 1}}
	g[pattern.Time] = [][]int{{0}, {1}}
	out, err := aggregate.Reduce(a, g)
	require.NoError(t, err)
	require.Equal(t, pattern.Shape{2, 1, 2, 1}, out.Shape())
	// obs 0: chan mean of (0,2)=1 and (1,3)=2; obs 1: +10
	require.Equal(t, []float64{1, 2, 11, 12}, out.Data())

	// input untouched
	require.Equal(t, 0.0, a.Data()[0])
	require.Len(t, a.Data(), 8)
}

func TestReducePassThroughCopies(t *testing.T) {
	a := line(t, pattern.Freq, []float64{1, 2, 3})
	out, err := aggregate.Reduce(a, aggregate.Groups{})
	require.NoError(t, err)
	require.Equal(t, a.Data(), out.Data())
	out.Data()[0] = 99
	require.Equal(t, 1.0, a.Data()[0])
}
