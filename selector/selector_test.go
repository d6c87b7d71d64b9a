package selector_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
	"github.com/mortonne/eeg-analysis-toolbox/selector"
)

// scenario returns 6 events with category [A,A,B,B,A,B], session [1,1,1,2,2,2]
// and a numeric rt.
func scenario(t *testing.T) *pattern.Records {
	t.Helper()
	cats := []string{"A", "A", "B", "B", "A", "B"}
	sess := []float64{1, 1, 1, 2, 2, 2}
	rows := make([][]pattern.Value, len(cats))
	for i := range cats {
		rows[i] = []pattern.Value{pattern.Str(cats[i]), pattern.Num(sess[i]), pattern.Num(float64(400 + 10*i))}
	}
	recs, err := pattern.NewRecords([]string{"category", "session", "rt"}, rows)
	require.NoError(t, err)

	return recs
}

func TestScenarioFoldsAndTargets(t *testing.T) {
	recs := scenario(t)

	folds, err := selector.Folds(recs, "session")
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1, 2, 2, 2}, folds)

	labels, err := selector.Targets(recs, "category")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 2, 2, 1, 2}, labels.Values)
	require.Equal(t, []string{"A", "B"}, labels.Levels)
	require.False(t, labels.IsRegressor())
}

func TestFoldIDsFollowFirstSeenOrder(t *testing.T) {
	rows := [][]pattern.Value{
		{pattern.Num(3)}, {pattern.Num(1)}, {pattern.Num(3)}, {pattern.Num(2)}, {pattern.Num(1)},
	}
	recs, err := pattern.NewRecords([]string{"run"}, rows)
	require.NoError(t, err)

	folds, err := selector.Folds(recs, "run")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 1, 3, 2}, folds)
	require.Equal(t, []int{1, 2, 3}, selector.Distinct(folds))
}

func TestTargetsRegressor(t *testing.T) {
	labels, err := selector.Targets(scenario(t), "rt")
	require.NoError(t, err)
	require.True(t, labels.IsRegressor())
	require.Equal(t, []float64{400, 410, 420, 430, 440, 450}, labels.Values)
}

func TestTargetsCombinedFields(t *testing.T) {
	labels, err := selector.Targets(scenario(t), "category", "session")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 2, 3, 4, 3}, labels.Values)
	require.Equal(t, []string{"A/1", "B/1", "B/2", "A/2"}, labels.Levels)
}

func TestTargetsMissingCategoryIsNaN(t *testing.T) {
	recs, err := pattern.NewRecords([]string{"category"}, [][]pattern.Value{
		{pattern.Str("face")}, {pattern.Str("")}, {pattern.Str("scene")},
	})
	require.NoError(t, err)
	labels, err := selector.Targets(recs, "category")
	require.NoError(t, err)
	require.Equal(t, 1.0, labels.Values[0])
	require.True(t, math.IsNaN(labels.Values[1]))
	require.Equal(t, 2.0, labels.Values[2])
}

func TestMissingSpecAndUnknownField(t *testing.T) {
	recs := scenario(t)

	_, err := selector.Targets(recs)
	require.ErrorIs(t, err, pattern.ErrConfig)
	require.Contains(t, err.Error(), "regressor")

	_, err = selector.Folds(recs, "block")
	require.ErrorIs(t, err, pattern.ErrConfig)
	require.ErrorIs(t, err, pattern.ErrUnknownField)
	require.Contains(t, err.Error(), "block")

	_, err = selector.Groups(nil, "category")
	require.ErrorIs(t, err, pattern.ErrConfig)
}

func TestGroups(t *testing.T) {
	ids, err := selector.Groups(scenario(t), "category")
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 2, 2, 1, 2}, ids)
}

func TestTargetsWithLevelsKeepsTrainingCodes(t *testing.T) {
	cats := []string{"B", "A", "C", "", "A", "B"}
	rows := make([][]pattern.Value, len(cats))
	for i, c := range cats {
		rows[i] = []pattern.Value{pattern.Str(c)}
	}
	recs, err := pattern.NewRecords([]string{"response"}, rows)
	require.NoError(t, err)

	got, err := selector.TargetsWithLevels(recs, []string{"A", "B"}, "response")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, got.Levels)
	require.Equal(t, 2.0, got.Values[0])
	require.Equal(t, 1.0, got.Values[1])
	require.True(t, math.IsNaN(got.Values[2]), "category not in levels")
	require.True(t, math.IsNaN(got.Values[3]), "missing category")
	require.Equal(t, 1.0, got.Values[4])
	require.Equal(t, 2.0, got.Values[5])
}

func TestTargetsWithLevelsKindMismatch(t *testing.T) {
	recs := scenario(t)

	_, err := selector.TargetsWithLevels(recs, []string{"A", "B"}, "rt")
	require.ErrorIs(t, err, pattern.ErrConfig)

	_, err = selector.TargetsWithLevels(recs, nil, "category")
	require.ErrorIs(t, err, pattern.ErrConfig)

	got, err := selector.TargetsWithLevels(recs, nil, "rt")
	require.NoError(t, err)
	require.True(t, got.IsRegressor())
	require.Equal(t, 400.0, got.Values[0])
}
