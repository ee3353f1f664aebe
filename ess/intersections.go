// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ess

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/alpiges/trunc-gaussian/constraint"
)

// maxParityRetries bounds the number of times the activity test's
// delta-theta window is shrunk while trying to recover an even number
// of active crossings.
const maxParityRetries = 30

// Arc is a half-open-at-construction angular interval [Start, End),
// expressed relative to a rotation offset, that lies entirely inside
// the integration domain.
type Arc struct {
	Start, End float64
}

// Intersections finds the angles at which an Ellipse crosses the
// boundary of a Linear domain and orders them so that consecutive pairs
// bound in-domain arcs.
type Intersections struct {
	ellipse *Ellipse
	lincon  *constraint.Linear

	// angles holds the active crossing angles, beginning with an
	// "into the domain" crossing. Its length is always even when
	// ellipseInDomain is true and non-empty.
	angles          []float64
	ellipseInDomain bool
}

// NewIntersections computes the active intersections of ellipse with
// the boundary of lincon's domain. rng is used only when the ellipse has
// no boundary crossing at all, to decide (by a single random sample)
// whether the whole ellipse lies inside or outside the domain.
//
// NewIntersections returns a non-nil error of Kind ErrDegenerateGeometry
// if the activity test cannot recover an even number of active
// crossings after exhausting its bounded number of retries.
func NewIntersections(ellipse *Ellipse, lincon *constraint.Linear, rng *rand.Rand) (*Intersections, error) {
	theta := candidateAngles(ellipse, lincon)

	active, dirs, ok := activeAngles(ellipse, lincon, theta)
	if !ok {
		return nil, newError(ErrDegenerateGeometry,
			"could not balance parity of active crossings after %d retries", maxParityRetries)
	}

	var inDomain bool
	if len(active) == 0 {
		sample := ellipse.At(rng.Float64() * 2 * math.Pi)
		if lincon.InDomain(sample) {
			inDomain = true
			active = []float64{0, 2 * math.Pi}
		}
	} else {
		inDomain = true
		if dirs[0] < 0 {
			active = append(active[1:], active[0])
		}
	}

	return &Intersections{ellipse: ellipse, lincon: lincon, angles: active, ellipseInDomain: inDomain}, nil
}

// EllipseInDomain reports whether at least one in-domain arc exists on
// the ellipse. If false, the caller must reject this ellipse: it
// indicates the point it was built from was not truly inside the
// domain.
func (a *Intersections) EllipseInDomain() bool {
	return a.ellipseInDomain
}

// Rotated returns the rotation offset (the first active angle) and the
// in-domain arcs re-expressed relative to that offset and wrapped into
// [0, 2*pi). It returns (0, nil) if EllipseInDomain is false.
func (a *Intersections) Rotated() (offset float64, arcs []Arc) {
	if !a.ellipseInDomain {
		return 0, nil
	}
	offset = a.angles[0]
	rel := make([]float64, len(a.angles))
	for i, t := range a.angles {
		v := t - offset
		if v < 0 {
			v += 2 * math.Pi
		}
		rel[i] = v
	}
	arcs = make([]Arc, len(rel)/2)
	for i := range arcs {
		arcs[i] = Arc{Start: rel[2*i], End: rel[2*i+1]}
	}
	return offset, arcs
}

// candidateAngles computes the up-to-2M candidate angles at which the
// ellipse crosses each constraint's hyperplane, sorted ascending in
// [0, 2*pi).
func candidateAngles(ellipse *Ellipse, lincon *constraint.Linear) []float64 {
	a := lincon.A()
	b := lincon.B()
	m := lincon.NumConstraints()
	a1, a2 := ellipse.A1(), ellipse.A2()

	out := make([]float64, 0, 2*m)
	for i := 0; i < m; i++ {
		g1, g2 := 0.0, 0.0
		for j := 0; j < lincon.Dim(); j++ {
			aij := a.At(i, j)
			g1 += aij * a1[j]
			g2 += aij * a2[j]
		}
		r := math.Hypot(g1, g2)
		if r == 0 {
			// The constraint is constant along this ellipse: either
			// always satisfied or never, contributing no crossing.
			continue
		}
		arg := -b[i] / r
		if math.Abs(arg) > 1 {
			continue
		}
		phi := 2 * math.Atan2(g2, r+g1)
		acos := math.Acos(arg)
		out = append(out, normalizeAngle(phi+acos), normalizeAngle(phi-acos))
	}
	sort.Float64s(out)
	return out
}

// activeAngles filters the candidate angles down to those that are
// genuine boundary crossings (as opposed to tangent points), by probing
// the domain indicator just before and after each candidate and
// shrinking delta-theta until an even number of active crossings
// survives or the retry budget is exhausted.
func activeAngles(ellipse *Ellipse, lincon *constraint.Linear, theta []float64) (active []float64, directions []float64, ok bool) {
	if len(theta) == 0 {
		return nil, nil, true
	}
	dt := 1e-10 * 2 * math.Pi
	for retry := 0; retry < maxParityRetries; retry++ {
		d := crossingDirections(ellipse, lincon, theta, dt)
		active = active[:0]
		directions = directions[:0]
		for i, di := range d {
			if di != 0 {
				active = append(active, theta[i])
				directions = append(directions, di)
			}
		}
		if len(active)%2 == 0 {
			out := make([]float64, len(active))
			copy(out, active)
			dirOut := make([]float64, len(directions))
			copy(dirOut, directions)
			return out, dirOut, true
		}
		dt *= 0.1
	}
	return nil, nil, false
}

// crossingDirections evaluates, for each candidate angle, the change in
// domain indicator between theta+dt and theta-dt.
func crossingDirections(ellipse *Ellipse, lincon *constraint.Linear, theta []float64, dt float64) []float64 {
	n := len(theta)
	probes := make([]float64, 2*n)
	for i, t := range theta {
		probes[i] = t + dt
		probes[n+i] = t - dt
	}
	x := ellipse.Batch(probes)
	ind := lincon.Indicator(x)
	d := make([]float64, n)
	for i := range theta {
		d[i] = ind[i] - ind[n+i]
	}
	return d
}

// normalizeAngle wraps theta into [0, 2*pi).
func normalizeAngle(theta float64) float64 {
	const twoPi = 2 * math.Pi
	theta = math.Mod(theta, twoPi)
	if theta < 0 {
		theta += twoPi
	}
	return theta
}
