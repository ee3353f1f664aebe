// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package splitting

import (
	"math"
	"math/rand/v2"

	"github.com/alpiges/trunc-gaussian/constraint"
	"github.com/alpiges/trunc-gaussian/ess"
	"gonum.org/v1/gonum/mat"
)

// Nesting is one domain in a sequence of nested (shrinking) domains. It
// replaces the source's "Loop"/"Nesting" base-class hierarchy with a
// narrow two-capability contract: score a batch against this level, and
// draw new samples from within it. HDRNesting and SubsetNesting are the
// two concrete variants; there is no shared base type.
//
// Every Nesting moves through a small lifecycle: unscored at
// construction, scored after a single call to Score. Score must not be
// called twice.
type Nesting interface {
	// Score computes this nesting's log-conditional-probability from a
	// batch of samples drawn in the previous nesting. rng is used only
	// by SubsetNesting, to pick the seed column(s) retained for
	// sampling the next level. Score returns a non-nil *Error of Kind
	// ErrEmptyNesting if no sample in the batch satisfies this level.
	Score(x *mat.Dense, rng *rand.Rand) error

	// Shift returns this nesting's (non-negative) shift. For
	// SubsetNesting this is only meaningful after Score.
	Shift() float64

	// LogProb returns the log-conditional-probability computed by
	// Score. LogProb panics if Score has not yet been called.
	LogProb() float64

	// Sample draws n new states from within this nesting via LIN-ESS,
	// starting from xInit (which must already satisfy this nesting's
	// indicator).
	Sample(n int, xInit *mat.Dense, nSkip int, rng *rand.Rand) (*mat.Dense, error)
}

var (
	_ Nesting = (*HDRNesting)(nil)
	_ Nesting = (*SubsetNesting)(nil)
)

// HDRNesting is the HDR variant of Nesting: its shift is fixed at
// construction (typically taken from a Subset Simulation shift
// sequence) rather than discovered from the batch it scores.
type HDRNesting struct {
	shifted *constraint.Linear
	shift   float64

	scored  bool
	logProb float64
}

// NewHDRNesting constructs the nesting {x : Ax + (b+shift) >= 0}.
// NewHDRNesting panics if shift is negative.
func NewHDRNesting(lincon *constraint.Linear, shift float64) *HDRNesting {
	if shift < 0 {
		panic("splitting: shift must be non-negative")
	}
	return &HDRNesting{shifted: lincon.Shifted(shift), shift: shift}
}

// Score implements Nesting. rng is unused; it is present only to
// satisfy the Nesting interface.
func (n *HDRNesting) Score(x *mat.Dense, _ *rand.Rand) error {
	if n.scored {
		panic("splitting: nesting already scored")
	}
	n.scored = true

	ind := n.shifted.Indicator(x)
	var count float64
	for _, v := range ind {
		count += v
	}
	_, cols := x.Dims()
	if count == 0 {
		n.logProb = math.Inf(-1)
		return newError(ErrEmptyNesting, "0 of %d samples satisfy shift=%v", cols, n.shift)
	}
	n.logProb = math.Log(count) - math.Log(float64(cols))
	return nil
}

// Shift implements Nesting.
func (n *HDRNesting) Shift() float64 { return n.shift }

// LogProb implements Nesting.
func (n *HDRNesting) LogProb() float64 {
	if !n.scored {
		panic("splitting: nesting has not been scored")
	}
	return n.logProb
}

// Sample implements Nesting by running LIN-ESS on the shifted
// constraints starting from xInit.
func (n *HDRNesting) Sample(nSamples int, xInit *mat.Dense, nSkip int, rng *rand.Rand) (*mat.Dense, error) {
	_, k := xInit.Dims()
	sampler := ess.NewSampler(nSamples, n.shifted, nSkip, xInit, rng)
	if err := sampler.Run(); err != nil {
		return nil, err
	}
	_, total := sampler.State().X.Dims()
	return sliceCols(sampler.State().X, k, total), nil
}

// SubsetNesting is the Subset Simulation variant of Nesting: given a
// batch of N columns and a target fraction f, it discovers the shift
// that places the floor(N*f) least-violating columns inside the domain,
// with the next column (the pivot) on its boundary (or, once the
// unshifted domain already contains more than the target fraction,
// locks the shift to zero).
type SubsetNesting struct {
	lincon      *constraint.Linear
	fraction    float64
	nSave       int
	keepSamples bool

	scored      bool
	shift       float64
	shifted     *constraint.Linear
	logProb     float64
	insideIdx   []int
	xIn         *mat.Dense
	insideBatch *mat.Dense
}

// NewSubsetNesting constructs an unscored Subset nesting that will
// target the given fraction of a future batch and retain nSave seed
// columns for the next level's sampling. NewSubsetNesting panics if
// fraction is not in (0,1) or nSave < 1.
func NewSubsetNesting(lincon *constraint.Linear, fraction float64, nSave int) *SubsetNesting {
	if fraction <= 0 || fraction >= 1 {
		panic("splitting: domain_fraction must be in (0, 1)")
	}
	if nSave < 1 {
		panic("splitting: n_save must be >= 1")
	}
	return &SubsetNesting{lincon: lincon, fraction: fraction, nSave: nSave, keepSamples: true}
}

// SetKeepSamples controls whether InsideSamples retains the in-domain
// column subset of the scored batch, trading memory for convenience.
func (n *SubsetNesting) SetKeepSamples(keep bool) { n.keepSamples = keep }

// Score discovers this nesting's shift from the batch x. With
// v_j = -min_i (Ax_j+b)_i and target = floor(N*fraction), the shift is
// the value of v at sorted position target (the pivot), so the target
// columns with the smallest v are counted as inside and the pivot lies
// on the boundary; the shift is zero instead if more than target
// columns already have v_j < 0. Score then picks nSave seed columns
// uniformly at random from the in-domain indices using rng.
func (n *SubsetNesting) Score(x *mat.Dense, rng *rand.Rand) error {
	if n.scored {
		panic("splitting: nesting already scored")
	}
	n.scored = true

	mins := n.lincon.ColumnMinima(x)
	_, N := x.Dims()
	v := make([]float64, N)
	for j, m := range mins {
		v[j] = -m
	}
	target := int(float64(N) * n.fraction)

	var belowZero []int
	for j, vj := range v {
		if vj < 0 {
			belowZero = append(belowZero, j)
		}
	}

	var shift float64
	var idxIn []int
	var nInside int
	if len(belowZero) > target {
		shift = 0
		idxIn = belowZero
		nInside = len(belowZero)
	} else {
		idx := argsort(v)
		shift = v[idx[target]]
		idxIn = append([]int{}, idx[:target]...)
		nInside = target
	}

	n.shift = shift
	n.shifted = n.lincon.Shifted(shift)
	n.insideIdx = idxIn

	if nInside == 0 {
		n.logProb = math.Inf(-1)
		return newError(ErrEmptyNesting, "0 of %d samples admitted at target fraction %v", N, n.fraction)
	}
	n.logProb = math.Log(float64(nInside)) - math.Log(float64(N))

	d := n.lincon.Dim()
	n.xIn = mat.NewDense(d, n.nSave, nil)
	for k := 0; k < n.nSave; k++ {
		j := idxIn[rng.IntN(len(idxIn))]
		n.xIn.SetCol(k, mat.Col(nil, j, x))
	}

	if n.keepSamples {
		n.insideBatch = mat.NewDense(d, len(idxIn), nil)
		for k, j := range idxIn {
			n.insideBatch.SetCol(k, mat.Col(nil, j, x))
		}
	}
	return nil
}

// Shift implements Nesting.
func (n *SubsetNesting) Shift() float64 { return n.shift }

// LogProb implements Nesting.
func (n *SubsetNesting) LogProb() float64 {
	if !n.scored {
		panic("splitting: nesting has not been scored")
	}
	return n.logProb
}

// XIn returns the D x n_save seed columns chosen by Score, used to
// initialise LIN-ESS for the next level.
func (n *SubsetNesting) XIn() *mat.Dense {
	if !n.scored {
		panic("splitting: nesting has not been scored")
	}
	return n.xIn
}

// InsideSamples returns the subset of the scored batch that lies inside
// this nesting, or (nil, false) if SetKeepSamples(false) was called.
func (n *SubsetNesting) InsideSamples() (*mat.Dense, bool) {
	if !n.keepSamples {
		return nil, false
	}
	return n.insideBatch, true
}

// Sample implements Nesting by running LIN-ESS on the shifted
// constraints starting from xInit.
func (n *SubsetNesting) Sample(nSamples int, xInit *mat.Dense, nSkip int, rng *rand.Rand) (*mat.Dense, error) {
	_, k := xInit.Dims()
	sampler := ess.NewSampler(nSamples, n.shifted, nSkip, xInit, rng)
	if err := sampler.Run(); err != nil {
		return nil, err
	}
	_, total := sampler.State().X.Dims()
	return sliceCols(sampler.State().X, k, total), nil
}
