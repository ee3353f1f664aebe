// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// BatchSummary holds per-dimension mean and variance of a D x N sample
// batch, a cheap diagnostic for catching a degenerate chain (e.g. one
// that got stuck and recorded the same state repeatedly) without
// inspecting every column by hand.
type BatchSummary struct {
	Mean     []float64
	Variance []float64
}

// Summarize computes the per-row mean and variance of x. It panics if x
// has zero columns.
func Summarize(x *mat.Dense) BatchSummary {
	rows, cols := x.Dims()
	if cols == 0 {
		panic("splitting: cannot summarize an empty batch")
	}
	mean := make([]float64, rows)
	variance := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, x)
		mean[i], variance[i] = stat.MeanVariance(row, nil)
	}
	return BatchSummary{Mean: mean, Variance: variance}
}
