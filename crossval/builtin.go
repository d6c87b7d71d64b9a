// SPDX-License-Identifier: MIT
// Package: crossval
//
// builtin.go — reference train/test pairs on gonum.
//
//   - Nearest centroid: one mean feature vector per class; a row is assigned
//     the class of the closest centroid (Euclidean, NaN features skipped).
//   - Ridge: L2-penalised least squares on centred data, solved with
//     gonum's dense solver; option "lambda" (default 1).
//
// NaN features are imputed with the training column mean by ridge and
// ignored by the centroid distance.

package crossval

import (
	"encoding/gob"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func init() {
	gob.Register(&CentroidModel{})
	gob.Register(&RidgeModel{})
}

// CentroidModel is the fitted nearest-centroid classifier.
type CentroidModel struct {
	Classes   []float64
	Centroids [][]float64 // Centroids[k] belongs to Classes[k]
}

// TrainCentroid fits a nearest-centroid classifier. Classes are the distinct
// labels in ascending order.
// Complexity: O(n·d).
func TrainCentroid(X *mat.Dense, y []float64, _ Params) (any, error) {
	n, d := X.Dims()
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("centroid: %d rows, %d labels", n, len(y))
	}
	classes := slices.Clone(y)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	m := &CentroidModel{Classes: classes, Centroids: make([][]float64, len(classes))}
	for k, cls := range classes {
		sum, cnt := make([]float64, d), make([]float64, d)
		for i := 0; i < n; i++ {
			if y[i] != cls {
				continue
			}
			for j, v := range X.RawRowView(i) {
				if !math.IsNaN(v) {
					sum[j] += v
					cnt[j]++
				}
			}
		}
		floats.Div(sum, cnt)
		m.Centroids[k] = sum
	}

	return m, nil
}

// PredictCentroid assigns each row the class of its nearest centroid; ties
// go to the smaller class.
func PredictCentroid(model any, X *mat.Dense) ([]float64, error) {
	m, ok := model.(*CentroidModel)
	if !ok {
		return nil, fmt.Errorf("centroid: unexpected model %T", model)
	}
	n, d := X.Dims()
	if len(m.Centroids) > 0 && len(m.Centroids[0]) != d {
		return nil, fmt.Errorf("centroid: model has %d features, data %d", len(m.Centroids[0]), d)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := X.RawRowView(i)
		best, bestDist := math.NaN(), math.Inf(1)
		for k, c := range m.Centroids {
			if dist := sqDistance(row, c); dist < bestDist {
				best, bestDist = m.Classes[k], dist
			}
		}
		out[i] = best
	}

	return out, nil
}

// sqDistance sums squared differences over features finite in both vectors.
func sqDistance(a, b []float64) float64 {
	s, used := 0.0, false
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		diff := a[j] - b[j]
		s += diff * diff
		used = true
	}
	if !used {
		return math.Inf(1)
	}
	return s
}

// RidgeModel is the fitted ridge regression.
type RidgeModel struct {
	Weights   []float64
	Intercept float64
	Means     []float64 // training feature means, used for imputation
}

// TrainRidge fits y ≈ X·w + b with penalty lambda·|w|².
// Complexity: O(n·d² + d³).
func TrainRidge(X *mat.Dense, y []float64, opts Params) (any, error) {
	lambda, err := opts.Float("lambda", 1)
	if err != nil {
		return nil, err
	}
	if lambda < 0 {
		return nil, fmt.Errorf("ridge: lambda %v must be non-negative", lambda)
	}
	n, d := X.Dims()
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("ridge: %d rows, %d targets", n, len(y))
	}

	means := columnMeans(X)
	xc := imputed(X, means)
	for i := 0; i < n; i++ {
		floats.Sub(xc.RawRowView(i), means)
	}
	ymean := floats.Sum(y) / float64(n)
	yc := slices.Clone(y)
	floats.AddConst(-ymean, yc)

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	for j := 0; j < d; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(n, yc))

	var w mat.VecDense
	if err := w.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("ridge: %w", err)
	}
	weights := make([]float64, d)
	for j := range weights {
		weights[j] = w.AtVec(j)
	}

	return &RidgeModel{
		Weights:   weights,
		Intercept: ymean - floats.Dot(means, weights),
		Means:     means,
	}, nil
}

// PredictRidge evaluates the fitted regression on every row.
func PredictRidge(model any, X *mat.Dense) ([]float64, error) {
	m, ok := model.(*RidgeModel)
	if !ok {
		return nil, fmt.Errorf("ridge: unexpected model %T", model)
	}
	n, d := X.Dims()
	if d != len(m.Weights) {
		return nil, fmt.Errorf("ridge: model has %d features, data %d", len(m.Weights), d)
	}
	xi := imputed(X, m.Means)
	out := make([]float64, n)
	for i := range out {
		out[i] = floats.Dot(xi.RawRowView(i), m.Weights) + m.Intercept
	}

	return out, nil
}

// columnMeans returns the NaN-excluding mean of each column (0 if all NaN).
func columnMeans(X *mat.Dense) []float64 {
	n, d := X.Dims()
	sum, cnt := make([]float64, d), make([]float64, d)
	for i := 0; i < n; i++ {
		for j, v := range X.RawRowView(i) {
			if !math.IsNaN(v) {
				sum[j] += v
				cnt[j]++
			}
		}
	}
	for j := range sum {
		if cnt[j] > 0 {
			sum[j] /= cnt[j]
		}
	}
	return sum
}

// imputed copies X replacing NaN entries with the column fill value.
func imputed(X *mat.Dense, fill []float64) *mat.Dense {
	out := mat.DenseCopyOf(X)
	n, _ := out.Dims()
	for i := 0; i < n; i++ {
		row := out.RawRowView(i)
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = fill[j]
			}
		}
	}
	return out
}
