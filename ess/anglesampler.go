// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ess

import (
	"math/rand/v2"
	"sort"
)

// SampleAngle draws a uniform angle from the union of arcs, which must
// be expressed relative to offset (as returned by Intersections.Rotated),
// and returns the angle in the original (un-rotated) frame.
func SampleAngle(offset float64, arcs []Arc, rng *rand.Rand) float64 {
	n := len(arcs)
	cum := make([]float64, n+1)
	for i, a := range arcs {
		cum[i+1] = cum[i] + (a.End - a.Start)
	}
	total := cum[n]

	u := rng.Float64() * total
	k := sort.Search(n, func(i int) bool { return cum[i+1] >= u })
	if k == n {
		k = n - 1
	}
	return arcs[k].Start + (u - cum[k]) + offset
}

// AngleSampler is a wrapper around SampleAngle that draws from the arcs
// of a fixed Intersections instance.
type AngleSampler struct {
	Intersections *Intersections
	Src           *rand.Rand
}

// Sample draws one angle from the union of in-domain arcs.
func (s AngleSampler) Sample() float64 {
	offset, arcs := s.Intersections.Rotated()
	return SampleAngle(offset, arcs, s.Src)
}
