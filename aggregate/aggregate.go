// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aggregate implements the per-cell cross-run Welford
// aggregator and [0,1] ranking map: across the N_f sweep runs at one
// candidate position, accumulate LEQ per cell, then normalise the
// resulting variance map into a ranking where higher is flatter.
package aggregate

import (
	"math"

	"github.com/emer/roomfdtd/roomerr"
	"gonum.org/v1/gonum/floats"
)

// Aggregator accumulates one Welford mean/variance per cell across
// successive LEQ snapshots. Each cell tracks its own sample count so a
// cell that is always NaN (a WALL cell, or a listener position that
// never saw a finite LEQ) contributes no samples rather than skewing
// the shared run index.
type Aggregator struct {
	size   int
	mean   []float64
	m2     []float64
	counts []int
}

// New allocates an Aggregator over `size` cells (normally
// g.W*g.H*g.D).
func New(size int) *Aggregator {
	return &Aggregator{
		size:   size,
		mean:   make([]float64, size),
		m2:     make([]float64, size),
		counts: make([]int, size),
	}
}

// Accumulate folds one run's per-cell LEQ snapshot into the running
// mean/variance. NaN entries skip that cell for this run, carrying the
// same NaN-safety policy the per-step analysis kernel uses.
func (a *Aggregator) Accumulate(leq []float64) error {
	if len(leq) != a.size {
		return &roomerr.ConfigurationError{Field: "leq", Reason: "length does not match aggregator size"}
	}
	for i, x := range leq {
		if math.IsNaN(x) {
			continue
		}
		a.counts[i]++
		n := float64(a.counts[i])
		oldMean := a.mean[i]
		newMean := oldMean + (x-oldMean)/n
		a.m2[i] += (x - newMean) * (x - oldMean)
		a.mean[i] = newMean
	}
	return nil
}

// VarianceMap returns, per cell, M2/n for cells with at least one
// sample and NaN for cells that never received one.
func (a *Aggregator) VarianceMap() []float64 {
	out := make([]float64, a.size)
	for i := range out {
		if a.counts[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = a.m2[i] / float64(a.counts[i])
	}
	return out
}

// RankingMap normalises a variance map to [0,1] per cell via
// (σ²−σ²_min)/(σ²_max−σ²_min), emitting ranking = 1−normalised; NaN
// cells map to ranking 0. The min/max reduction runs over gonum/floats.
func RankingMap(variance []float64) []float64 {
	out := make([]float64, len(variance))

	finite := make([]float64, 0, len(variance))
	for _, v := range variance {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return out // all zero
	}

	vMin := floats.Min(finite)
	vMax := floats.Max(finite)

	for i, v := range variance {
		if math.IsNaN(v) {
			out[i] = 0
			continue
		}
		normalised := 0.0
		if vMax > vMin {
			normalised = (v - vMin) / (vMax - vMin)
		}
		out[i] = 1 - normalised
	}
	return out
}
