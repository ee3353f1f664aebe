// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint defines linear inequality constraints Ax+b >= 0 and
// the integration domain they carve out of R^D, either as the
// intersection or the union of the individual half-spaces.
package constraint

import (
	"gonum.org/v1/gonum/mat"
)

const (
	badZeroDimension = "constraint: zero dimensional input"
	badSizeMismatch  = "constraint: size mismatch"
	badShift         = "constraint: shift must be non-negative"
	badMode          = "constraint: unrecognised mode"
)

// Mode selects how the M individual half-space indicators are combined
// into a single domain indicator.
type Mode int

const (
	// Intersection is 1 iff every row of Ax+b is >= 0.
	Intersection Mode = iota
	// Union is 1 iff at least one row of Ax+b is >= 0.
	Union
)

func (m Mode) String() string {
	switch m {
	case Intersection:
		return "Intersection"
	case Union:
		return "Union"
	default:
		panic(badMode)
	}
}

// Linear represents the linear inequality constraints f(x) = Ax + b and
// the domain {x : f(x) >= 0} (Intersection) or {x : max_i f_i(x) >= 0}
// (Union). A Linear is immutable after construction.
type Linear struct {
	a    *mat.Dense // M x D
	b    []float64  // length M
	mode Mode
}

// NewLinear constructs the linear constraints Ax+b with the given
// combination mode. NewLinear panics if a is nil, if b is empty, or if
// the number of rows of a does not match len(b).
func NewLinear(a *mat.Dense, b []float64, mode Mode) *Linear {
	if a == nil || len(b) == 0 {
		panic(badZeroDimension)
	}
	rows, _ := a.Dims()
	if rows != len(b) {
		panic(badSizeMismatch)
	}
	bb := make([]float64, len(b))
	copy(bb, b)
	return &Linear{a: a, b: bb, mode: mode}
}

// Dim returns D, the dimension of the ambient space.
func (l *Linear) Dim() int {
	_, d := l.a.Dims()
	return d
}

// NumConstraints returns M, the number of linear inequalities.
func (l *Linear) NumConstraints() int {
	return len(l.b)
}

// Mode returns the combination rule used by Indicator.
func (l *Linear) Mode() Mode {
	return l.mode
}

// A returns the constraint matrix. The returned matrix must not be
// modified.
func (l *Linear) A() *mat.Dense {
	return l.a
}

// B returns the offset vector. The returned slice must not be modified.
func (l *Linear) B() []float64 {
	return l.b
}

// Evaluate computes Ax+b for the N columns of x (shape D x N), writing
// the M x N result into dst. If dst does not have the correct shape, a
// new matrix is allocated and returned; dst may be nil.
//
// Evaluate panics if the number of rows of x does not equal Dim().
func (l *Linear) Evaluate(x mat.Matrix, dst *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	if rows != l.Dim() {
		panic(badSizeMismatch)
	}
	m := l.NumConstraints()
	if dst == nil {
		dst = mat.NewDense(m, cols, nil)
	} else {
		r, c := dst.Dims()
		if r != m || c != cols {
			dst = mat.NewDense(m, cols, nil)
		}
	}
	dst.Mul(l.a, x)
	for i := 0; i < m; i++ {
		bi := l.b[i]
		for j := 0; j < cols; j++ {
			dst.Set(i, j, dst.At(i, j)+bi)
		}
	}
	return dst
}

// EvaluateColumn computes Ax+b for the single column x (length Dim()),
// returning the length-M result.
func (l *Linear) EvaluateColumn(x []float64) []float64 {
	if len(x) != l.Dim() {
		panic(badSizeMismatch)
	}
	col := mat.NewDense(l.Dim(), 1, x)
	out := l.Evaluate(col, nil)
	res := make([]float64, l.NumConstraints())
	for i := range res {
		res[i] = out.At(i, 0)
	}
	return res
}

// Indicator returns, for each of the N columns of x, 1 if the column
// lies in the (closed) domain and 0 otherwise. Equality (f(x) == 0)
// counts as inside the domain.
func (l *Linear) Indicator(x mat.Matrix) []float64 {
	vals := l.Evaluate(x, nil)
	m, cols := vals.Dims()
	out := make([]float64, cols)
	switch l.mode {
	case Intersection:
		for j := 0; j < cols; j++ {
			in := 1.0
			for i := 0; i < m; i++ {
				if vals.At(i, j) < 0 {
					in = 0
					break
				}
			}
			out[j] = in
		}
	case Union:
		for j := 0; j < cols; j++ {
			in := 0.0
			for i := 0; i < m; i++ {
				if vals.At(i, j) >= 0 {
					in = 1
					break
				}
			}
			out[j] = in
		}
	default:
		panic(badMode)
	}
	return out
}

// InDomain reports whether the single column x lies in the domain.
func (l *Linear) InDomain(x []float64) bool {
	col := mat.NewDense(l.Dim(), 1, x)
	return l.Indicator(col)[0] != 0
}

// Shifted returns a new Linear with b replaced by b + shift (the same
// scalar added to every offset), relaxing the domain. Shifted panics if
// shift is negative.
func (l *Linear) Shifted(shift float64) *Linear {
	if shift < 0 {
		panic(badShift)
	}
	nb := make([]float64, len(l.b))
	for i, bi := range l.b {
		nb[i] = bi + shift
	}
	return &Linear{a: l.a, b: nb, mode: l.mode}
}

// ColumnMinima returns, for each of the N columns of x, min_i (Ax+b)_i —
// the most-violated constraint margin. This is independent of Mode and
// is used by Subset Simulation to discover an admissible shift.
func (l *Linear) ColumnMinima(x mat.Matrix) []float64 {
	vals := l.Evaluate(x, nil)
	m, cols := vals.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		min := vals.At(0, j)
		for i := 1; i < m; i++ {
			if v := vals.At(i, j); v < min {
				min = v
			}
		}
		out[j] = min
	}
	return out
}
