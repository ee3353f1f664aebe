// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// drawStandardNormal draws a D x N batch of iid N(0,1) entries.
func drawStandardNormal(d, n int, rng *rand.Rand) *mat.Dense {
	x := mat.NewDense(d, n, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}
	return x
}

// sliceCols returns the columns [start, end) of m as a new matrix.
func sliceCols(m *mat.Dense, start, end int) *mat.Dense {
	rows, _ := m.Dims()
	out := mat.NewDense(rows, end-start, nil)
	for j := start; j < end; j++ {
		out.SetCol(j-start, mat.Col(nil, j, m))
	}
	return out
}

// argsort returns the indices that would sort v ascending.
func argsort(v []float64) []int {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return v[idx[i]] < v[idx[j]] })
	return idx
}
