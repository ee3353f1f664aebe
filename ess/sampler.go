// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ess

import (
	"fmt"
	"math/rand/v2"

	"github.com/alpiges/trunc-gaussian/constraint"
	"gonum.org/v1/gonum/mat"
)

// maxProposalRetries bounds how many fresh ellipses LIN-ESS will try
// for a single elliptical-slice transition before giving up. Each
// recorded state takes nSkip+1 transitions, each with its own budget.
const maxProposalRetries = 1000

// Logger receives diagnostic messages emitted by a Sampler while it
// runs (e.g. resample events). A nil Logger discards them.
type Logger func(format string, args ...any)

// SamplerState holds the history of states visited by a Sampler. X has
// shape D x (K+n_iterations): the first K columns are the initial
// points supplied at construction, the remainder are the recorded
// states from successive calls to Run.
type SamplerState struct {
	X         *mat.Dense
	Iteration int
}

// Sampler draws from a linearly constrained unit Gaussian using
// elliptical slice sampling (LIN-ESS): starting from a point known to
// be inside the domain, it repeatedly proposes a random ellipse through
// the current state and moves to a point drawn uniformly from the
// ellipse's in-domain arcs.
type Sampler struct {
	nIterations int
	lincon      *constraint.Linear
	nSkip       int
	rng         *rand.Rand
	log         Logger

	state *SamplerState
	k     int // number of initial columns supplied at construction
}

// NewSampler constructs a Sampler that will record nIterations new
// states, skipping nSkip intermediate states between each recorded one.
// xInit has shape D x K; every column must lie in lincon's domain.
//
// NewSampler panics if xInit's dimension does not match lincon, if
// nSkip is negative, or if any column of xInit is not in the domain —
// these are all precondition violations caught at construction time.
func NewSampler(nIterations int, lincon *constraint.Linear, nSkip int, xInit *mat.Dense, rng *rand.Rand) *Sampler {
	d, k := xInit.Dims()
	if d != lincon.Dim() {
		panic("ess: x_init dimension does not match constraints")
	}
	if k == 0 {
		panic("ess: x_init must have at least one column")
	}
	if nSkip < 0 {
		panic("ess: n_skip must be non-negative")
	}
	ind := lincon.Indicator(xInit)
	for j, in := range ind {
		if in == 0 {
			panic(fmt.Sprintf("ess: x_init column %d is not in the domain", j))
		}
	}

	x := mat.NewDense(d, k+nIterations, nil)
	for j := 0; j < k; j++ {
		col := mat.Col(nil, j, xInit)
		x.SetCol(j, col)
	}

	return &Sampler{
		nIterations: nIterations,
		lincon:      lincon,
		nSkip:       nSkip,
		rng:         rng,
		state:       &SamplerState{X: x, Iteration: 0},
		k:           k,
	}
}

// SetLogger installs a Logger that receives diagnostic messages (e.g.
// resample events) as Run executes. Passing nil disables logging.
func (s *Sampler) SetLogger(log Logger) {
	s.log = log
}

// State returns the sampler's current state. The returned SamplerState
// and its X matrix must not be modified.
func (s *Sampler) State() *SamplerState {
	return s.state
}

// Run advances the chain until nIterations new states have been
// recorded. It returns a non-nil *Error (see ErrorKind) if the
// intersection solver cannot resolve a degenerate ellipse, if a
// proposed ellipse carries no in-domain arc at all (a precondition
// violation — the chain was misinitialised), or if proposals repeatedly
// fail the domain check beyond the bounded retry budget.
func (s *Sampler) Run() error {
	d := s.lincon.Dim()
	current := mat.Col(nil, s.k+s.state.Iteration-1, s.state.X)
	for s.state.Iteration < s.nIterations {
		x0 := current
		for j := 0; j <= s.nSkip; j++ {
			x1, err := s.step(x0)
			if err != nil {
				return err
			}
			x0 = x1
		}
		s.state.X.SetCol(s.k+s.state.Iteration, x0)
		s.state.Iteration++
		current = make([]float64, d)
		copy(current, x0)
	}
	return nil
}

// step performs a single elliptical-slice transition from x0,
// retrying with a fresh proposal ellipse on degenerate geometry or a
// rejected candidate, up to maxProposalRetries times.
func (s *Sampler) step(x0 []float64) ([]float64, error) {
	d := len(x0)
	var lastErr error
	for attempt := 0; attempt < maxProposalRetries; attempt++ {
		nu := make([]float64, d)
		for i := range nu {
			nu[i] = s.rng.NormFloat64()
		}
		ellipse := NewEllipse(x0, nu)
		inter, err := NewIntersections(ellipse, s.lincon, s.rng)
		if err != nil {
			lastErr = err
			continue
		}
		if !inter.EllipseInDomain() {
			return nil, newError(ErrNotInDomain,
				"ellipse through the current state has no in-domain arc; x0 was not actually in the domain")
		}
		theta := AngleSampler{Intersections: inter, Src: s.rng}.Sample()
		x1 := ellipse.At(theta)
		if s.lincon.InDomain(x1) {
			return x1, nil
		}
		if s.log != nil {
			s.log("Point outside domain, resample")
		}
		lastErr = newError(ErrResampleOverflow, "candidate outside domain")
	}
	kind := ErrResampleOverflow
	if e, ok := lastErr.(*Error); ok {
		kind = e.Kind
	}
	return nil, newError(kind, "exceeded %d proposal retries: %v", maxProposalRetries, lastErr)
}
