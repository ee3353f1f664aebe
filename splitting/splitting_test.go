// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/alpiges/trunc-gaussian/constraint"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func randomDomain(rng *rand.Rand, nLC, nDim int) *constraint.Linear {
	a := mat.NewDense(nLC, nDim, nil)
	for i := 0; i < nLC; i++ {
		for j := 0; j < nDim; j++ {
			a.Set(i, j, 2*rng.NormFloat64())
		}
	}
	b := make([]float64, nLC)
	for i := range b {
		b[i] = rng.NormFloat64()
	}
	return constraint.NewLinear(a, b, constraint.Intersection)
}

// TestSubsetTermination checks that a Subset Simulation run terminates
// with a final shift of exactly zero, and that its shift sequence is
// non-increasing.
func TestSubsetTermination(t *testing.T) {
	rng := rand.New(rand.NewPCG(0, 0))
	lincon := randomDomain(rng, 5, 3)

	sim := NewSubsetSimulation(lincon, 16, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Run: %v", err)
	}

	shifts := sim.Tracker().ShiftSequence()
	if len(shifts) == 0 {
		t.Fatal("no nestings recorded")
	}
	if shifts[len(shifts)-1] != 0 {
		t.Fatalf("final shift = %v, want 0", shifts[len(shifts)-1])
	}
	for i := 1; i < len(shifts); i++ {
		if shifts[i] > shifts[i-1] {
			t.Fatalf("shift sequence not non-increasing at index %d: %v > %v", i, shifts[i], shifts[i-1])
		}
	}
}

// TestHDROnSubsetGeometry checks that HDR seeded from a Subset
// Simulation's discovered shift sequence produces a conditional
// probability in (0,1] at every level.
func TestHDROnSubsetGeometry(t *testing.T) {
	rng := rand.New(rand.NewPCG(0, 0))
	lincon := randomDomain(rng, 5, 3)

	sim := NewSubsetSimulation(lincon, 16, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Subset Run: %v", err)
	}
	shifts := sim.Tracker().ShiftSequence()
	xInit := sim.XIns()

	hdr := NewHDR(lincon, shifts, 100, xInit, 0)
	if err := hdr.Run(rng); err != nil {
		t.Fatalf("HDR Run: %v", err)
	}

	for _, n := range hdr.Tracker().Nestings() {
		p := math.Exp(n.LogProb())
		if p <= 0 || p > 1 {
			t.Errorf("conditional probability %v not in (0,1]", p)
		}
	}
}

// TestProductLaw checks that the tracker's log-integral is the sum of
// each nesting's log-probability, i.e. exp(sum(log p)) == prod(p).
func TestProductLaw(t *testing.T) {
	rng := rand.New(rand.NewPCG(0, 0))
	lincon := randomDomain(rng, 5, 3)

	sim := NewSubsetSimulation(lincon, 16, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Subset Run: %v", err)
	}
	shifts := sim.Tracker().ShiftSequence()
	xInit := sim.XIns()

	hdr := NewHDR(lincon, shifts, 100, xInit, 0)
	if err := hdr.Run(rng); err != nil {
		t.Fatalf("HDR Run: %v", err)
	}

	logIntegral := hdr.Tracker().LogIntegral()
	product := 1.0
	for _, n := range hdr.Tracker().Nestings() {
		product *= math.Exp(n.LogProb())
	}
	if math.Abs(math.Exp(logIntegral)-product) > 1e-9 {
		t.Fatalf("exp(sum log p) = %v, want %v", math.Exp(logIntegral), product)
	}
}

// TestHalfSpaceGroundTruth checks that direct Monte Carlo indicator
// counting recovers the known probability of a half-space under the
// standard Gaussian.
func TestHalfSpaceGroundTruth(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{1})
	b := []float64{0}
	lincon := constraint.NewLinear(a, b, constraint.Intersection)

	rng := rand.New(rand.NewPCG(1, 1))
	const n = 200000
	x := drawStandardNormal(1, n, rng)
	ind := lincon.Indicator(x)
	var count float64
	for _, v := range ind {
		count += v
	}
	p := count / n
	if math.Abs(p-0.5) > 0.01 {
		t.Fatalf("estimated probability %v too far from 0.5", p)
	}
}

// TestSmallProbability checks that Subset Simulation followed by HDR
// recovers a small probability that direct Monte Carlo would miss.
func TestSmallProbability(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	b := []float64{-3, -3}
	lincon := constraint.NewLinear(a, b, constraint.Intersection)

	truth := distuv.UnitNormal.CDF(-3) * distuv.UnitNormal.CDF(-3)

	rng := rand.New(rand.NewPCG(2, 2))
	sim := NewSubsetSimulation(lincon, 200, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Subset Run: %v", err)
	}
	shifts := sim.Tracker().ShiftSequence()
	xInit := sim.XIns()

	hdr := NewHDR(lincon, shifts, 200, xInit, 0)
	if err := hdr.Run(rng); err != nil {
		t.Fatalf("HDR Run: %v", err)
	}

	estimate := hdr.Tracker().Integral()
	ratio := estimate / truth
	if ratio < 0.5 || ratio > 2 {
		t.Fatalf("estimate %v, truth %v, ratio %v outside factor-of-2 band", estimate, truth, ratio)
	}
}

// TestHDRDrawMore checks that drawing additional samples from a
// completed HDR run's final nesting produces samples satisfying the
// unshifted domain.
func TestHDRDrawMore(t *testing.T) {
	rng := rand.New(rand.NewPCG(0, 0))
	lincon := randomDomain(rng, 5, 3)

	sim := NewSubsetSimulation(lincon, 16, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Subset Run: %v", err)
	}
	shifts := sim.Tracker().ShiftSequence()
	xInit := sim.XIns()

	hdr := NewHDR(lincon, shifts, 100, xInit, 0)
	if err := hdr.Run(rng); err != nil {
		t.Fatalf("HDR Run: %v", err)
	}

	more, err := hdr.DrawMore(20, rng)
	if err != nil {
		t.Fatalf("DrawMore: %v", err)
	}
	ind := lincon.Indicator(more)
	for j, v := range ind {
		if v == 0 {
			t.Errorf("drawn sample %d not in the unshifted domain", j)
		}
	}
}

// TestFinalSamplesInDomain checks that HDR's retained final samples
// satisfy the unshifted domain indicator.
func TestFinalSamplesInDomain(t *testing.T) {
	rng := rand.New(rand.NewPCG(0, 0))
	lincon := randomDomain(rng, 5, 3)

	sim := NewSubsetSimulation(lincon, 16, 0.5, 0)
	if err := sim.Run(rng); err != nil {
		t.Fatalf("Subset Run: %v", err)
	}
	shifts := sim.Tracker().ShiftSequence()
	xInit := sim.XIns()

	hdr := NewHDR(lincon, shifts, 100, xInit, 0)
	if err := hdr.Run(rng); err != nil {
		t.Fatalf("HDR Run: %v", err)
	}

	samples, ok := hdr.Tracker().FinalSamples()
	if !ok {
		t.Fatal("expected final samples to be recorded")
	}
	ind := lincon.Indicator(samples)
	for j, v := range ind {
		if v == 0 {
			t.Errorf("final sample %d not in unshifted domain", j)
		}
	}
}
