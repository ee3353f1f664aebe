// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math/rand/v2"

	"github.com/alpiges/trunc-gaussian/constraint"
	"gonum.org/v1/gonum/mat"
)

// SubsetSimulation adaptively discovers a decreasing sequence of domain
// shifts terminating at zero, scoring each level's conditional
// probability against a batch drawn from the previous level.
type SubsetSimulation struct {
	lincon   *constraint.Linear
	nSamples int
	fraction float64
	nSkip    int
	log      Logger

	tracker *Tracker
}

// NewSubsetSimulation constructs a driver that will draw nSamples
// samples per nesting, targeting domainFraction of each batch to fall
// into the next level. NewSubsetSimulation panics if nSamples < 1,
// domainFraction is not in (0,1), or nSkip is negative.
func NewSubsetSimulation(lincon *constraint.Linear, nSamples int, domainFraction float64, nSkip int) *SubsetSimulation {
	if nSamples < 1 {
		panic("splitting: n_samples must be >= 1")
	}
	if domainFraction <= 0 || domainFraction >= 1 {
		panic("splitting: domain_fraction must be in (0, 1)")
	}
	if nSkip < 0 {
		panic("splitting: n_skip must be non-negative")
	}
	return &SubsetSimulation{
		lincon:   lincon,
		nSamples: nSamples,
		fraction: domainFraction,
		nSkip:    nSkip,
		tracker:  &Tracker{},
	}
}

// SetLogger installs a Logger that receives "finished nesting #N"
// diagnostics as Run executes.
func (s *SubsetSimulation) SetLogger(log Logger) { s.log = log }

// Tracker returns the sequence of nestings discovered by Run.
func (s *SubsetSimulation) Tracker() *Tracker { return s.tracker }

// Run draws an initial batch from the standard Gaussian, then builds
// nestings until one is found with shift exactly zero, sampling each
// successive batch with LIN-ESS from the previous nesting's seed
// column. Run returns a non-nil error of Kind ErrEmptyNesting if a
// nesting's conditional probability collapses to zero before the
// sequence terminates.
func (s *SubsetSimulation) Run(rng *rand.Rand) error {
	d := s.lincon.Dim()
	x := drawStandardNormal(d, s.nSamples, rng)

	for {
		nest := NewSubsetNesting(s.lincon, s.fraction, 1)
		err := nest.Score(x, rng)
		s.tracker.Add(nest)
		if err != nil {
			return err
		}
		if s.log != nil {
			s.log("finished nesting #%d", s.tracker.Len())
		}
		if nest.Shift() == 0 {
			return nil
		}
		next, err := nest.Sample(s.nSamples, nest.XIn(), s.nSkip, rng)
		if err != nil {
			return err
		}
		x = next
	}
}

// XIns returns the seed column chosen by every nesting in the tracker,
// concatenated into a D x Tracker().Len() matrix — the X_init HDR needs
// when seeded from this run's discovered shift sequence.
func (s *SubsetSimulation) XIns() *mat.Dense {
	nestings := s.tracker.Nestings()
	d := s.lincon.Dim()
	out := mat.NewDense(d, len(nestings), nil)
	for i, n := range nestings {
		sn := n.(*SubsetNesting)
		out.SetCol(i, mat.Col(nil, 0, sn.XIn()))
	}
	return out
}
