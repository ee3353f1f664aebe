// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ess implements elliptical slice sampling specialised to linear
// constraints (LIN-ESS): an exact Markov chain sampler for the unit
// Gaussian restricted to {x : Ax+b >= 0}.
//
// A single step proposes an ellipse x(theta) = a1*cos(theta) +
// a2*sin(theta) through the current state, finds the angles at which
// that ellipse crosses the domain boundary (Intersections), and draws
// the next state uniformly from the in-domain arcs (AngleSampler). This
// produces an exact, rejection-free slice sampling step because the
// 1-D problem on the ellipse has a closed-form solution.
package ess
