// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Tracker is an append-only sequence of Nestings accumulating
// log-conditional-probabilities into a running log-integral estimate,
// plus the optional final in-domain samples a driver chooses to retain.
type Tracker struct {
	nestings     []Nesting
	finalSamples *mat.Dense
}

// Add appends a nesting to the sequence.
func (t *Tracker) Add(n Nesting) {
	t.nestings = append(t.nestings, n)
}

// Nestings returns the sequence of nestings added so far. The returned
// slice must not be modified.
func (t *Tracker) Nestings() []Nesting {
	return t.nestings
}

// Len returns the number of nestings added so far.
func (t *Tracker) Len() int {
	return len(t.nestings)
}

// LogIntegral returns the sum of every nesting's log-conditional
// probability.
func (t *Tracker) LogIntegral() float64 {
	var sum float64
	for _, n := range t.nestings {
		sum += n.LogProb()
	}
	return sum
}

// Integral returns exp(LogIntegral()).
func (t *Tracker) Integral() float64 {
	return math.Exp(t.LogIntegral())
}

// ShiftSequence returns the shift of every nesting, in order.
func (t *Tracker) ShiftSequence() []float64 {
	out := make([]float64, len(t.nestings))
	for i, n := range t.nestings {
		out[i] = n.Shift()
	}
	return out
}

// SetFinalSamples records the samples a driver chose to retain from the
// innermost (shift-0) nesting.
func (t *Tracker) SetFinalSamples(x *mat.Dense) {
	t.finalSamples = x
}

// FinalSamples returns the samples recorded by SetFinalSamples, or
// (nil, false) if none were recorded.
func (t *Tracker) FinalSamples() (*mat.Dense, bool) {
	if t.finalSamples == nil {
		return nil, false
	}
	return t.finalSamples, true
}
