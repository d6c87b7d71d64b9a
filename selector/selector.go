// SPDX-License-Identifier: MIT

package selector

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/mortonne/eeg-analysis-toolbox/pattern"
)

// LevelSep joins the values of a multi-field category into its level name.
const LevelSep = "/"

// Labels holds one target per observation. Levels is nil for a regressor
// (one numeric field, raw values); otherwise Values holds codes 1..K and
// Levels[k-1] names code k.
type Labels struct {
	Values []float64
	Levels []string
}

// IsRegressor reports whether the labels are raw numeric values.
func (l Labels) IsRegressor() bool { return l.Levels == nil }

// Targets builds the label vector from one or more fields.
//
// A single numeric field is used as-is. Anything else is treated as a
// category whose codes follow first-seen order; records missing any of the
// fields get a NaN target.
func Targets(recs *pattern.Records, fields ...string) (Labels, error) {
	cols, err := resolve(recs, "regressor", fields)
	if err != nil {
		return Labels{}, err
	}
	if len(cols) == 1 && numeric(cols[0]) {
		vals := make([]float64, recs.Len())
		for i, v := range cols[0] {
			vals[i] = v.Num
		}
		return Labels{Values: vals}, nil
	}

	ids, levels := enumerate(cols, recs.Len(), true)
	vals := make([]float64, len(ids))
	for i, id := range ids {
		if id == 0 {
			vals[i] = math.NaN()
			continue
		}
		vals[i] = float64(id)
	}

	return Labels{Values: vals, Levels: levels}, nil
}

// TargetsWithLevels builds test-time labels that share the coding of an
// existing label set. For categorical levels, each record is coded by the
// position of its level name in levels; categories absent from levels, and
// records missing a field, get NaN. For nil levels (a regressor) the fields
// must name one numeric field. A numeric/categorical mismatch is ErrConfig.
func TargetsWithLevels(recs *pattern.Records, levels []string, fields ...string) (Labels, error) {
	cols, err := resolve(recs, "test regressor", fields)
	if err != nil {
		return Labels{}, err
	}
	isNumeric := len(cols) == 1 && numeric(cols[0])
	if levels == nil {
		if !isNumeric {
			return Labels{}, fmt.Errorf("selector: test regressor %v: %w: categorical, training regressor is numeric",
				fields, pattern.ErrConfig)
		}
		return Targets(recs, fields...)
	}
	if isNumeric {
		return Labels{}, fmt.Errorf("selector: test regressor %v: %w: numeric, training regressor is categorical",
			fields, pattern.ErrConfig)
	}

	codes := make(map[string]float64, len(levels))
	for k, l := range levels {
		codes[l] = float64(k + 1)
	}
	vals := make([]float64, recs.Len())
	row := make([]pattern.Value, len(cols))
	for i := range vals {
		vals[i] = math.NaN()
		missing := false
		for j, col := range cols {
			row[j] = col[i]
			missing = missing || col[i].IsMissing()
		}
		if missing {
			continue
		}
		if code, ok := codes[levelName(row)]; ok {
			vals[i] = code
		}
	}

	return Labels{Values: vals, Levels: slices.Clone(levels)}, nil
}

// Folds assigns dense 1-based fold ids to the distinct combinations of the
// given fields, in first-seen order. Missing values form their own fold.
func Folds(recs *pattern.Records, fields ...string) ([]int, error) {
	cols, err := resolve(recs, "selector", fields)
	if err != nil {
		return nil, err
	}
	ids, _ := enumerate(cols, recs.Len(), false)

	return ids, nil
}

// Groups assigns training-group ids used for balanced resampling. Ids follow
// the same enumeration as Folds.
func Groups(recs *pattern.Records, fields ...string) ([]int, error) {
	cols, err := resolve(recs, "training group", fields)
	if err != nil {
		return nil, err
	}
	ids, _ := enumerate(cols, recs.Len(), false)

	return ids, nil
}

// Distinct returns the sorted distinct ids.
func Distinct(ids []int) []int {
	out := slices.Clone(ids)
	slices.Sort(out)

	return slices.Compact(out)
}

// resolve looks every field up once; role names the missing spec in errors.
func resolve(recs *pattern.Records, role string, fields []string) ([][]pattern.Value, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("selector: %s not specified: %w", role, pattern.ErrConfig)
	}
	if recs == nil {
		return nil, fmt.Errorf("selector: %s %v: no event records: %w", role, fields, pattern.ErrConfig)
	}
	cols, err := recs.Columns(fields...)
	if err != nil {
		return nil, fmt.Errorf("selector: %s %v: %w", role, fields, err)
	}

	return cols, nil
}

func numeric(col []pattern.Value) bool {
	for _, v := range col {
		if v.Kind != pattern.Number {
			return false
		}
	}

	return true
}

// enumerate codes each record by its value combination, 1-based in first-seen
// order. With skipMissing, records with any missing value get id 0.
func enumerate(cols [][]pattern.Value, n int, skipMissing bool) ([]int, []string) {
	ids := make([]int, n)
	seen := make(map[string]int)
	var levels []string
	row := make([]pattern.Value, len(cols))
	for i := 0; i < n; i++ {
		missing := false
		for j, col := range cols {
			row[j] = col[i]
			missing = missing || col[i].IsMissing()
		}
		if skipMissing && missing {
			continue
		}
		key := pattern.Key(row...)
		id, ok := seen[key]
		if !ok {
			id = len(seen) + 1
			seen[key] = id
			levels = append(levels, levelName(row))
		}
		ids[i] = id
	}
	if levels == nil {
		levels = []string{}
	}

	return ids, levels
}

func levelName(row []pattern.Value) string {
	parts := make([]string, len(row))
	for j, v := range row {
		parts[j] = v.String()
	}

	return strings.Join(parts, LevelSep)
}
