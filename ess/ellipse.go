// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ess

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const badEllipseDim = "ess: a1 and a2 must have equal, non-zero length"

// Ellipse is the 1-parameter curve x(theta) = a1*cos(theta) +
// a2*sin(theta) in R^D, used as the proposal for a single LIN-ESS step.
// An Ellipse is immutable.
type Ellipse struct {
	a1, a2 []float64
}

// NewEllipse constructs the ellipse through a1 and a2. It panics if a1
// and a2 do not have the same, non-zero length.
func NewEllipse(a1, a2 []float64) *Ellipse {
	if len(a1) == 0 || len(a1) != len(a2) {
		panic(badEllipseDim)
	}
	e := &Ellipse{a1: make([]float64, len(a1)), a2: make([]float64, len(a2))}
	copy(e.a1, a1)
	copy(e.a2, a2)
	return e
}

// Dim returns D, the dimension of the ambient space.
func (e *Ellipse) Dim() int {
	return len(e.a1)
}

// At evaluates x(theta), returning a length-D slice.
func (e *Ellipse) At(theta float64) []float64 {
	c, s := math.Cos(theta), math.Sin(theta)
	x := make([]float64, e.Dim())
	for i := range x {
		x[i] = e.a1[i]*c + e.a2[i]*s
	}
	return x
}

// AtTo evaluates x(theta) into dst, which must have length Dim().
func (e *Ellipse) AtTo(dst []float64, theta float64) {
	if len(dst) != e.Dim() {
		panic(badEllipseDim)
	}
	c, s := math.Cos(theta), math.Sin(theta)
	for i := range dst {
		dst[i] = e.a1[i]*c + e.a2[i]*s
	}
}

// Batch evaluates x(theta) for every entry of thetas, returning a D x
// len(thetas) matrix.
func (e *Ellipse) Batch(thetas []float64) *mat.Dense {
	d := e.Dim()
	out := mat.NewDense(d, len(thetas), nil)
	col := make([]float64, d)
	for j, theta := range thetas {
		e.AtTo(col, theta)
		out.SetCol(j, col)
	}
	return out
}

// A1 returns the first defining vector. The returned slice must not be
// modified.
func (e *Ellipse) A1() []float64 { return e.a1 }

// A2 returns the second defining vector. The returned slice must not be
// modified.
func (e *Ellipse) A2() []float64 { return e.a2 }
