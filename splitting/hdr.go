// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math/rand/v2"

	"github.com/alpiges/trunc-gaussian/constraint"
	"gonum.org/v1/gonum/mat"
)

// HDR implements the Holmes-Diaconis-Ross estimator: given a precomputed
// shift sequence (typically discovered by SubsetSimulation), it
// re-estimates each level's conditional probability with a fresh,
// larger sample. The order is score-then-sample: a batch is scored
// against the current shift before a new batch is drawn from inside
// that shifted domain for the next level.
type HDR struct {
	lincon   *constraint.Linear
	shifts   []float64
	nSamples int
	xInit    *mat.Dense // D x L, one seed column per shift
	nSkip    int
	log      Logger

	tracker *Tracker
}

// NewHDR constructs an HDR driver for the given shift sequence. xInit
// must have one column per entry of shifts; column i must satisfy the
// indicator of the domain shifted by shifts[i].
//
// NewHDR panics if nSamples < 1, nSkip is negative, shifts is empty,
// any entry of shifts is negative, shifts is not non-increasing, or
// xInit does not have exactly len(shifts) columns.
func NewHDR(lincon *constraint.Linear, shifts []float64, nSamples int, xInit *mat.Dense, nSkip int) *HDR {
	if nSamples < 1 {
		panic("splitting: n_samples must be >= 1")
	}
	if nSkip < 0 {
		panic("splitting: n_skip must be non-negative")
	}
	if len(shifts) == 0 {
		panic("splitting: shift sequence must be non-empty")
	}
	for i, s := range shifts {
		if s < 0 {
			panic("splitting: shift sequence must be non-negative")
		}
		if i > 0 && s > shifts[i-1] {
			panic("splitting: shift sequence must be non-increasing")
		}
	}
	_, l := xInit.Dims()
	if l != len(shifts) {
		panic("splitting: X_init must have one column per shift")
	}
	return &HDR{
		lincon:   lincon,
		shifts:   append([]float64{}, shifts...),
		nSamples: nSamples,
		xInit:    xInit,
		nSkip:    nSkip,
		tracker:  &Tracker{},
	}
}

// SetLogger installs a Logger that receives "finished nesting #N"
// diagnostics as Run executes.
func (h *HDR) SetLogger(log Logger) { h.log = log }

// Tracker returns the sequence of scored nestings.
func (h *HDR) Tracker() *Tracker { return h.tracker }

// Run scores a batch against each shift in turn, using the nesting just
// scored at level i to draw the batch for level i+1, and retains the
// final in-domain samples once the last level is scored. It returns a
// non-nil error of Kind ErrEmptyNesting if some level's conditional
// probability collapses to zero.
func (h *HDR) Run(rng *rand.Rand) error {
	d := h.lincon.Dim()
	x := drawStandardNormal(d, h.nSamples, rng)

	for i, shift := range h.shifts {
		nest := NewHDRNesting(h.lincon, shift)
		err := nest.Score(x, rng)
		h.tracker.Add(nest)
		if err != nil {
			return err
		}
		if h.log != nil {
			h.log("finished nesting #%d", i)
		}

		if i < len(h.shifts)-1 {
			xInitCol := mat.NewDense(d, 1, mat.Col(nil, i, h.xInit))
			next, err := nest.Sample(h.nSamples, xInitCol, h.nSkip, rng)
			if err != nil {
				return err
			}
			x = next
		} else {
			h.tracker.SetFinalSamples(finalInDomainSamples(h.lincon, x))
		}
	}
	return nil
}

// DrawMore draws n fresh samples from the final (shift-0) nesting of
// this run's shift sequence, mirroring the source's draw_from_domain
// helper.
func (h *HDR) DrawMore(n int, rng *rand.Rand) (*mat.Dense, error) {
	last := h.shifts[len(h.shifts)-1]
	nest := NewHDRNesting(h.lincon, last)
	d := h.lincon.Dim()
	xInitCol := mat.NewDense(d, 1, mat.Col(nil, len(h.shifts)-1, h.xInit))
	return nest.Sample(n, xInitCol, h.nSkip, rng)
}

func finalInDomainSamples(lincon *constraint.Linear, x *mat.Dense) *mat.Dense {
	ind := lincon.Indicator(x)
	d, _ := x.Dims()
	var keep []int
	for j, v := range ind {
		if v != 0 {
			keep = append(keep, j)
		}
	}
	out := mat.NewDense(d, len(keep), nil)
	for k, j := range keep {
		out.SetCol(k, mat.Col(nil, j, x))
	}
	return out
}
