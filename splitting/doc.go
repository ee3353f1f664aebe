// Copyright ©2024 The trunc-gaussian Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package splitting implements multilevel-splitting estimators for the
// probability of a linearly constrained Gaussian domain: Subset
// Simulation, which adaptively discovers a decreasing sequence of
// domain shifts, and HDR (Holmes-Diaconis-Ross), which re-estimates the
// conditional probability at each shift in a supplied sequence with a
// fresh, larger sample.
//
// Both estimators are built from a small shared vocabulary: a Nesting
// is one domain in the sequence, capable of scoring a batch of samples
// against itself and of drawing new samples from within itself via
// package ess; a Tracker accumulates the resulting per-level
// log-probabilities into a running log-integral estimate.
package splitting
